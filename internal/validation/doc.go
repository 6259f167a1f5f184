// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built lazily and shared. Field names in
// messages are taken from json tags, so a failure reads "quantity_tonnes
// must be greater than 0" rather than naming the Go field.
//
// Custom tags:
//   - calendar_date: a string in YYYY-MM-DD form naming a real day
//   - finite: a float that is neither NaN nor infinite
//
// Example:
//
//	type Request struct {
//	    Quantity float64 `json:"quantity_tonnes" validate:"finite,gt=0"`
//	    Date     string  `json:"selected_date" validate:"required,calendar_date"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation
