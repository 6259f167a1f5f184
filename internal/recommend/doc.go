// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

// Package recommend ranks where and when a farmer should sell a crop lot.
//
// # Algorithm
//
// For a request (farm location, commodity, quantity, selected date) the
// engine enumerates every date in the horizon and every configured market
// that has feature history for the commodity. Each candidate gets:
//
//   - the market's latest lag features, which stay fixed across the horizon
//   - calendar features for the candidate date and the market coordinates
//   - a price per kg from the commodity's predictor
//   - the great-circle distance from the farm
//   - a net profit from the cost model in package profit
//
// Candidates are sorted by unrounded net profit, highest first. Sorting is
// stable, so equal profits keep enumeration order (date ascending, then
// market list order). Values are rounded only when building the response.
//
// # Failure Modes
//
//   - Invalid input wraps ErrInvalidRequest and a *validation.RequestValidationError.
//   - A commodity without a predictor returns predict.ErrModelNotFound and no output.
//   - A predictor that needs features the engine does not build returns
//     predict.ErrFeatureMismatch.
//   - Markets without history are skipped and listed in the response metadata.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, featureTable, registry, logger)
//	if err != nil {
//	    return err
//	}
//	resp, err := engine.Recommend(ctx, recommend.Request{
//	    FarmerLat:      18.52,
//	    FarmerLon:      73.85,
//	    Commodity:      "Onion",
//	    QuantityTonnes: 2,
//	    SelectedDate:   "2024-01-15",
//	})
//
// # Thread Safety
//
// Engine is safe for concurrent use. Responses may be served from an LRU
// cache; every caller receives its own copy.
package recommend
