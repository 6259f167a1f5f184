// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package api provides the HTTP interface of the recommender, routed with chi.

Endpoints:

	GET  /                         welcome message
	POST /recommend                ranked (date, market) recommendations
	POST /api/v1/recommendations   same as /recommend
	GET  /api/v1/markets           configured markets
	GET  /api/v1/commodities       commodities with price history
	GET  /api/v1/health/live       liveness check
	GET  /api/v1/health/ready      readiness check
	GET  /metrics                  Prometheus metrics

A recommendation request carries the farm location, commodity, lot size in
tonnes and the first sale date:

	{
	  "farmer_lat": 18.52,
	  "farmer_lon": 73.85,
	  "commodity": "Onion",
	  "quantity_tonnes": 2,
	  "selected_date": "2024-01-15"
	}

horizon_days, top_k, all and include_breakdown are optional. The success
body is the engine response, {"recommendations": [...], "metadata": {...}}.

Errors use a common envelope:

	{"status": "error", "error": {"code": "MODEL_NOT_FOUND", "message": "...", "details": {...}}}

	VALIDATION_ERROR      400  missing or out of range fields
	INVALID_JSON          400  body is not a JSON object
	MODEL_NOT_FOUND       404  no price model for the commodity
	FEATURE_MISMATCH      500  model expects features that are not computed
	TIMEOUT               504  request exceeded server.request_timeout
	RECOMMENDATION_ERROR  500  any other failure

Every request passes through request ID, real IP, recovery, CORS and
Prometheus middleware. API routes are rate limited per client IP with
go-chi/httprate.
*/
package api
