// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package history

import (
	"time"
)

// LagWindow is the number of prior observations a feature row needs.
const LagWindow = 7

// Feature names as expected by predictor artifacts.
const (
	FeaturePriceYesterday    = "price_yesterday"
	FeaturePriceLastWeek     = "price_last_week"
	FeaturePriceAvg7Days     = "price_avg_7days"
	FeatureDayOfWeek         = "day_of_week"
	FeatureMonth             = "month"
	FeatureIsWeekend         = "is_weekend"
	FeatureArrivalsYesterday = "arrivals_yesterday"
	FeatureMarketLat         = "market_lat"
	FeatureMarketLon         = "market_lon"
)

// FeatureRow holds the model inputs derived for one price record.
// Lag and rolling fields only ever look at records dated before Date.
type FeatureRow struct {
	MarketName        string    `json:"market_name"`
	Commodity         string    `json:"commodity"`
	Date              time.Time `json:"date"`
	PriceYesterday    float64   `json:"price_yesterday"`
	PriceLastWeek     float64   `json:"price_last_week"`
	PriceAvg7Days     float64   `json:"price_avg_7days"`
	DayOfWeek         int       `json:"day_of_week"`
	Month             int       `json:"month"`
	IsWeekend         int       `json:"is_weekend"`
	ArrivalsYesterday float64   `json:"arrivals_yesterday"`
}

// Calendar holds the date-derived features.
type Calendar struct {
	// DayOfWeek runs from Monday = 0 to Sunday = 6.
	DayOfWeek int
	Month     int
	IsWeekend int
}

// CalendarFor derives calendar features from a date.
func CalendarFor(date time.Time) Calendar {
	dow := (int(date.Weekday()) + 6) % 7
	weekend := 0
	if dow >= 5 {
		weekend = 1
	}
	return Calendar{
		DayOfWeek: dow,
		Month:     int(date.Month()),
		IsWeekend: weekend,
	}
}

// LagValues returns the lag features of the row keyed by feature name.
func (r FeatureRow) LagValues() map[string]float64 {
	return map[string]float64{
		FeaturePriceYesterday:    r.PriceYesterday,
		FeaturePriceLastWeek:     r.PriceLastWeek,
		FeaturePriceAvg7Days:     r.PriceAvg7Days,
		FeatureArrivalsYesterday: r.ArrivalsYesterday,
	}
}

// BuildFeatures derives feature rows from price records.
//
// Records are grouped by (market, commodity) and ordered by date. A row is
// emitted for position i only once LagWindow earlier records exist, so the
// first LagWindow observations of every series produce nothing. The result
// is ordered by market, commodity and date and depends only on the input.
func BuildFeatures(records []PriceRecord) []FeatureRow {
	return NewPriceHistory(records).Features()
}

// Features derives feature rows for every series in the history.
func (h *PriceHistory) Features() []FeatureRow {
	rows := make([]FeatureRow, 0, len(h.records))
	for _, key := range h.keys {
		rows = appendSeriesFeatures(rows, h.series[key])
	}
	return rows
}

// appendSeriesFeatures appends the rows for a single date-ordered series.
func appendSeriesFeatures(rows []FeatureRow, series []PriceRecord) []FeatureRow {
	for i := LagWindow; i < len(series); i++ {
		rec := series[i]

		var sum float64
		for j := i - LagWindow; j < i; j++ {
			sum += series[j].ModalPrice
		}

		cal := CalendarFor(rec.Date)
		rows = append(rows, FeatureRow{
			MarketName:        rec.MarketName,
			Commodity:         rec.Commodity,
			Date:              rec.Date,
			PriceYesterday:    series[i-1].ModalPrice,
			PriceLastWeek:     series[i-LagWindow].ModalPrice,
			PriceAvg7Days:     sum / LagWindow,
			DayOfWeek:         cal.DayOfWeek,
			Month:             cal.Month,
			IsWeekend:         cal.IsWeekend,
			ArrivalsYesterday: series[i-1].ArrivalsQty,
		})
	}
	return rows
}
