// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

// Package history holds the daily price series for each (market, commodity)
// pair and derives the lag features consumed by the price predictors.
//
// # Feature Construction
//
// For a series sorted by date, the row at position i uses:
//
//   - price_yesterday:    modal price at i-1
//   - price_last_week:    modal price at i-7
//   - price_avg_7days:    mean modal price over i-7..i-1
//   - arrivals_yesterday: arrivals at i-1
//   - day_of_week, month, is_weekend from the row's own date
//
// Rows without seven earlier observations are not emitted. Nothing at or
// after a row's date feeds its lag fields.
//
// # Lifecycle
//
// PriceHistory and FeatureTable are built once at startup and never mutated:
//
//	h := history.NewPriceHistory(records)
//	table := history.NewFeatureTable(h)
//	row, ok := table.Latest("Delhi_Mandi", "Tomato")
package history
