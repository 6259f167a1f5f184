// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package metrics provides Prometheus metrics for the recommender service.

All collectors are registered with the default registry through promauto and
exposed at /metrics by the API router.

# Available Metrics

API:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Recommendations:
  - recommendations_total{commodity,outcome}
  - recommendation_duration_seconds
  - recommendation_candidates
  - recommendation_markets_skipped_total{commodity}
  - recommendation_cache_hits_total, recommendation_cache_misses_total

Predictor artifacts:
  - predictor_artifact_loads_total{commodity,result}
  - predictor_artifact_load_duration_seconds
  - predictor_artifacts_loaded
  - circuit_breaker_* for the artifact-source breaker

Data:
  - duckdb_query_duration_seconds{operation,table}
  - duckdb_query_errors_total{operation,table}
  - ingest_rows_total{outcome}, ingest_last_success_timestamp
  - feature_table_rows

# Usage

	start := time.Now()
	// ... handle request
	metrics.RecordAPIRequest(r.Method, "/api/v1/recommendations", "200", time.Since(start))
*/
package metrics
