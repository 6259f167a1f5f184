// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package recommend

import (
	"fmt"
	"strconv"
	"strings"
)

// Request asks where and when to sell a crop lot.
type Request struct {
	// FarmerLat and FarmerLon locate the farm in decimal degrees.
	FarmerLat float64 `json:"farmer_lat" validate:"finite,min=-90,max=90"`
	FarmerLon float64 `json:"farmer_lon" validate:"finite,min=-180,max=180"`

	// Commodity must match a commodity in the price history exactly.
	Commodity string `json:"commodity" validate:"required,max=100"`

	// QuantityTonnes is the lot size.
	QuantityTonnes float64 `json:"quantity_tonnes" validate:"finite,gt=0"`

	// SelectedDate is the first candidate sale date, YYYY-MM-DD.
	SelectedDate string `json:"selected_date" validate:"required,calendar_date"`

	// HorizonDays is the number of consecutive dates to evaluate.
	// Zero selects the configured default.
	HorizonDays int `json:"horizon_days,omitempty" validate:"omitempty,min=1"`

	// TopK is the number of recommendations to return.
	// Zero selects the configured default.
	TopK int `json:"top_k,omitempty" validate:"omitempty,min=1"`

	// All returns every candidate instead of the top K.
	All bool `json:"all,omitempty"`

	// IncludeBreakdown adds revenue and total costs to each recommendation.
	IncludeBreakdown bool `json:"include_breakdown,omitempty"`

	// RequestID is used for tracing; generated when empty.
	RequestID string `json:"-"`
}

// cacheKey identifies requests that produce identical recommendations.
// It must be called after defaults are applied.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (req Request) cacheKey() string {
	var b strings.Builder
	b.WriteString("rec:")
	b.WriteString(strconv.Quote(req.Commodity))
	for _, f := range []float64{req.FarmerLat, req.FarmerLon, req.QuantityTonnes} {
		b.WriteByte(':')
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
	fmt.Fprintf(&b, ":%s:%d:%d:%t:%t", req.SelectedDate, req.HorizonDays, req.TopK, req.All, req.IncludeBreakdown)
	return b.String()
}

// Recommendation is one (date, market) candidate with its estimated profit.
type Recommendation struct {
	// Date is the candidate sale date, YYYY-MM-DD.
	Date string `json:"date"`

	// MarketName identifies the market.
	MarketName string `json:"market_name"`

	// DistanceKM is the farm to market distance, rounded to 0.1 km.
	DistanceKM float64 `json:"distance_km"`

	// PredictedPricePerKg is rounded to 2 decimal places.
	PredictedPricePerKg float64 `json:"predicted_price_kg"`

	// NetProfit is rounded to whole rupees; it may be negative.
	NetProfit float64 `json:"net_profit"`

	// Revenue and TotalCosts are set only when a breakdown is requested.
	Revenue    *float64 `json:"revenue,omitempty"`
	TotalCosts *float64 `json:"total_costs,omitempty"`
}

// Response contains the ranked recommendations and metadata.
type Response struct {
	// Recommendations is ordered by net profit, highest first. Empty means
	// no market had enough history for the commodity.
	Recommendations []Recommendation `json:"recommendations"`

	// Metadata describes how the response was produced.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID           string   `json:"request_id"`
	Commodity           string   `json:"commodity"`
	SelectedDate        string   `json:"selected_date"`
	HorizonDays         int      `json:"horizon_days"`
	TopK                int      `json:"top_k"`
	CandidatesEvaluated int      `json:"candidates_evaluated"`
	MarketsSkipped      []string `json:"markets_skipped"`
	ModelVersion        int      `json:"model_version"`
	LatencyMS           int64    `json:"latency_ms"`
	CacheHit            bool     `json:"cache_hit"`
}

// Metrics contains engine counters.
type Metrics struct {
	RequestCount int64 `json:"request_count"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	ErrorCount   int64 `json:"error_count"`
	CacheSize    int   `json:"cache_size"`
}
