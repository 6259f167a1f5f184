// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/mohan-p-hp/market-recomender/internal/logging"
	"github.com/mohan-p-hp/market-recomender/internal/recommend"
	"github.com/mohan-p-hp/market-recomender/internal/recommend/predict"
	"github.com/mohan-p-hp/market-recomender/internal/validation"
)

// maxRequestBodyBytes caps the size of a recommendation request body.
const maxRequestBodyBytes = 64 << 10

// RecommendRequest is the JSON body of POST /recommend. The five core
// fields are required; pointers distinguish a missing number from zero.
type RecommendRequest struct {
	FarmerLat      *float64 `json:"farmer_lat" validate:"required"`
	FarmerLon      *float64 `json:"farmer_lon" validate:"required"`
	Commodity      *string  `json:"commodity" validate:"required"`
	QuantityTonnes *float64 `json:"quantity_tonnes" validate:"required"`
	SelectedDate   *string  `json:"selected_date" validate:"required"`

	HorizonDays      int  `json:"horizon_days,omitempty"`
	TopK             int  `json:"top_k,omitempty"`
	All              bool `json:"all,omitempty"`
	IncludeBreakdown bool `json:"include_breakdown,omitempty"`
}

// toEngineRequest converts a checked body into an engine request.
func (b *RecommendRequest) toEngineRequest(requestID string) recommend.Request {
	return recommend.Request{
		FarmerLat:        *b.FarmerLat,
		FarmerLon:        *b.FarmerLon,
		Commodity:        *b.Commodity,
		QuantityTonnes:   *b.QuantityTonnes,
		SelectedDate:     *b.SelectedDate,
		HorizonDays:      b.HorizonDays,
		TopK:             b.TopK,
		All:              b.All,
		IncludeBreakdown: b.IncludeBreakdown,
		RequestID:        requestID,
	}
}

// Recommend handles POST /recommend and POST /api/v1/recommendations.
//
// The response body is {"recommendations": [...], "metadata": {...}}. An
// empty list with status 200 means no market had enough history for the
// commodity.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var body RecommendRequest
	if apiErr, err := decodeRecommendRequest(w, r, &body); apiErr != nil {
		respondError(w, r, http.StatusBadRequest, apiErr, err)
		return
	}

	if verr := validation.ValidateStruct(&body); verr != nil {
		respondError(w, r, http.StatusBadRequest, fromValidation(verr), verr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	req := body.toEngineRequest(logging.RequestIDFromContext(r.Context()))
	resp, err := h.engine.Recommend(ctx, req)
	if err != nil {
		status, apiErr := classifyRecommendError(err, req.Commodity)
		respondError(w, r, status, apiErr, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// decodeRecommendRequest reads the JSON body. Type mismatches are reported
// as validation errors on the offending field.
func decodeRecommendRequest(w http.ResponseWriter, r *http.Request, body *RecommendRequest) (*APIError, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))

	err := dec.Decode(body)
	if err == nil {
		return nil, nil
	}

	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr):
		return &APIError{
			Code:    ErrCodeValidation,
			Message: fmt.Sprintf("%s must be a %s", typeErr.Field, typeErr.Type),
			Details: map[string]interface{}{"field": typeErr.Field, "tag": "type"},
		}, err
	case errors.As(err, &maxErr):
		return newAPIError(ErrCodeInvalidJSON,
			fmt.Sprintf("Request body exceeds %d bytes", maxErr.Limit)), err
	case errors.Is(err, io.EOF):
		return newAPIError(ErrCodeInvalidJSON, "Request body is empty"), err
	default:
		return newAPIError(ErrCodeInvalidJSON, "Request body is not valid JSON"), err
	}
}

// classifyRecommendError maps engine errors to a status and API error.
func classifyRecommendError(err error, commodity string) (int, *APIError) {
	var verr *validation.RequestValidationError
	var mismatch *predict.FeatureMismatchError

	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, fromValidation(verr)

	case errors.Is(err, recommend.ErrInvalidRequest):
		return http.StatusBadRequest, newAPIError(ErrCodeValidation, err.Error())

	case errors.Is(err, predict.ErrModelNotFound):
		return http.StatusNotFound, &APIError{
			Code:    ErrCodeModelNotFound,
			Message: fmt.Sprintf("No price model is available for commodity %q", commodity),
			Details: map[string]interface{}{"commodity": commodity},
		}

	case errors.As(err, &mismatch):
		return http.StatusInternalServerError, &APIError{
			Code:    ErrCodeFeatureMismatch,
			Message: "The price model expects features that are not available",
			Details: map[string]interface{}{
				"commodity": mismatch.Commodity,
				"missing":   mismatch.Missing,
			},
		}

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, newAPIError(ErrCodeTimeout, "Recommendation timed out")

	default:
		return http.StatusInternalServerError,
			newAPIError(ErrCodeRecommendation, "Failed to generate recommendations")
	}
}

func fromValidation(verr *validation.RequestValidationError) *APIError {
	e := verr.ToAPIError()
	return &APIError{Code: e.Code, Message: e.Message, Details: e.Details}
}
