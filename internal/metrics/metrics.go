// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Recommendation requests, candidate counts and skipped markets
// - Predictor artifact loads and the artifact-source circuit breaker
// - Price store queries and CSV ingestion

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests by outcome",
		},
		[]string{"commodity", "outcome"}, // outcome: "ok", "empty", "invalid", "model_not_found", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time spent producing a recommendation response",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_candidates",
			Help:    "Number of (date, market) pairs evaluated per request",
			Buckets: []float64{0, 1, 3, 5, 10, 25, 50, 100, 250},
		},
	)

	RecommendationMarketsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_markets_skipped_total",
			Help: "Markets excluded from a request for lack of feature history",
		},
		[]string{"commodity"},
	)

	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_hits_total",
			Help: "Total number of recommendation responses served from cache",
		},
	)

	RecommendationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Predictor Artifact Metrics
	ArtifactLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictor_artifact_loads_total",
			Help: "Artifact store reads by result",
		},
		[]string{"commodity", "result"}, // result: "loaded", "not_found", "invalid", "error"
	)

	ArtifactLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "predictor_artifact_load_duration_seconds",
			Help:    "Time spent reading and decoding a predictor artifact",
			Buckets: prometheus.DefBuckets,
		},
	)

	ArtifactsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "predictor_artifacts_loaded",
			Help: "Number of predictor artifacts held in memory",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Ingestion Metrics
	IngestRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "CSV rows processed by outcome",
		},
		[]string{"outcome"}, // outcome: "imported", "skipped"
	)

	IngestLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_last_success_timestamp",
			Help: "Unix timestamp of the last successful import",
		},
	)

	FeatureTableRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feature_table_rows",
			Help: "Number of feature rows built at startup",
		},
	)
)

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records the outcome of one recommendation request.
func RecordRecommendation(commodity, outcome string, duration time.Duration, candidates int) {
	RecommendationsTotal.WithLabelValues(commodity, outcome).Inc()
	RecommendationDuration.Observe(duration.Seconds())
	if candidates >= 0 {
		RecommendationCandidates.Observe(float64(candidates))
	}
}

// RecordMarketsSkipped counts markets dropped for missing history.
func RecordMarketsSkipped(commodity string, n int) {
	if n > 0 {
		RecommendationMarketsSkipped.WithLabelValues(commodity).Add(float64(n))
	}
}

// RecordRecommendationCache records a response cache lookup.
func RecordRecommendationCache(hit bool) {
	if hit {
		RecommendationCacheHits.Inc()
	} else {
		RecommendationCacheMisses.Inc()
	}
}

// RecordArtifactLoad records one read against the artifact store.
func RecordArtifactLoad(commodity, result string, duration time.Duration) {
	ArtifactLoadsTotal.WithLabelValues(commodity, result).Inc()
	ArtifactLoadDuration.Observe(duration.Seconds())
}

// SetArtifactsLoaded updates the in-memory artifact gauge.
func SetArtifactsLoaded(n int) {
	ArtifactsLoaded.Set(float64(n))
}

// RecordIngestRows records CSV rows by outcome.
func RecordIngestRows(imported, skipped int64) {
	IngestRowsTotal.WithLabelValues("imported").Add(float64(imported))
	IngestRowsTotal.WithLabelValues("skipped").Add(float64(skipped))
	IngestLastSuccess.Set(float64(time.Now().Unix()))
}

// SetFeatureTableRows records the size of the feature table.
func SetFeatureTableRows(n int) {
	FeatureTableRows.Set(float64(n))
}
