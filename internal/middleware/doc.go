// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package middleware provides HTTP middleware shared by the API router.

PrometheusMetrics records api_requests_total, api_request_duration_seconds
and api_active_requests for every request. The endpoint label is the chi
route pattern, so a route with URL parameters is one series however it
is called. Requests that match no route share the "unmatched" label.

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
