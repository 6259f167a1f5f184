// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package services provides suture.Service wrappers for long-running
components of the recommender.

  - HTTPServerService runs the chi router on an *http.Server and shuts it
    down gracefully when the supervisor stops.
  - WarmupService preloads predictor artifacts for configured commodities,
    then periodically publishes registry gauges and sweeps expired
    responses from the engine cache.

Each wrapper returns ctx.Err() on shutdown so suture does not restart it,
and any other error to request a restart.
*/
package services
