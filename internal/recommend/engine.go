// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohan-p-hp/market-recomender/internal/cache"
	"github.com/mohan-p-hp/market-recomender/internal/geo"
	"github.com/mohan-p-hp/market-recomender/internal/history"
	"github.com/mohan-p-hp/market-recomender/internal/logging"
	"github.com/mohan-p-hp/market-recomender/internal/metrics"
	"github.com/mohan-p-hp/market-recomender/internal/profit"
	"github.com/mohan-p-hp/market-recomender/internal/recommend/predict"
	"github.com/mohan-p-hp/market-recomender/internal/validation"
)

// FeatureSource provides the most recent feature row per series.
// *history.FeatureTable implements it.
type FeatureSource interface {
	Latest(market, commodity string) (history.FeatureRow, bool)
}

// PredictorSource provides the price predictor for a commodity.
// *predict.Registry implements it.
type PredictorSource interface {
	Load(ctx context.Context, commodity string) (*predict.Artifact, error)
}

// Engine ranks (date, market) candidates by estimated net profit.
// It is safe for concurrent use; the feature source and predictors must
// not change while the engine is serving.
type Engine struct {
	config *Config
	logger zerolog.Logger

	features   FeatureSource
	predictors PredictorSource

	cache *cache.LRU[string, *Response]

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64
}

// candidate is an unrounded, scored (date, market) pair.
type candidate struct {
	date      string
	market    string
	distance  float64
	priceKg   float64
	breakdown profit.Breakdown
}

// NewEngine creates a recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, features FeatureSource, predictors PredictorSource, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if features == nil {
		return nil, fmt.Errorf("feature source is required")
	}
	if predictors == nil {
		return nil, fmt.Errorf("predictor source is required")
	}

	e := &Engine{
		config:     cfg.Clone(),
		logger:     logger.With().Str("component", "recommend").Logger(),
		features:   features,
		predictors: predictors,
	}
	if cfg.Cache.Enabled {
		e.cache = cache.NewLRU[string, *Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}
	return e, nil
}

// Recommend evaluates every (date, market) pair in the horizon and returns
// the most profitable ones. A commodity without a predictor fails the whole
// request with predict.ErrModelNotFound; markets without enough history are
// skipped and listed in the metadata.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	if verr := validation.ValidateStruct(&req); verr != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendation(req.Commodity, "invalid", time.Since(start), -1)
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, verr)
	}
	selected, err := history.ParseDate(req.SelectedDate)
	if err != nil {
		e.errorCount.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	req = e.prepareRequest(req)
	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	if resp := e.tryGetCachedResponse(req, start, logger); resp != nil {
		metrics.RecordRecommendation(req.Commodity, outcomeFor(resp), time.Since(start), -1)
		return resp, nil
	}

	artifact, err := e.predictors.Load(ctx, req.Commodity)
	if err != nil {
		e.errorCount.Add(1)
		outcome := "error"
		if errors.Is(err, predict.ErrModelNotFound) {
			outcome = "model_not_found"
		}
		metrics.RecordRecommendation(req.Commodity, outcome, time.Since(start), -1)
		return nil, err
	}

	if err := checkFeatureNames(artifact); err != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendation(req.Commodity, "error", time.Since(start), -1)
		return nil, err
	}

	candidates, skipped, err := e.scoreCandidates(ctx, req, selected, artifact)
	if err != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendation(req.Commodity, "error", time.Since(start), -1)
		return nil, fmt.Errorf("score candidates: %w", err)
	}
	metrics.RecordMarketsSkipped(req.Commodity, len(skipped))

	rankCandidates(candidates)
	evaluated := len(candidates)
	if !req.All && len(candidates) > req.TopK {
		candidates = candidates[:req.TopK]
	}

	resp := &Response{
		Recommendations: buildRecommendations(candidates, req.IncludeBreakdown),
		Metadata: ResponseMetadata{
			RequestID:           req.RequestID,
			Commodity:           req.Commodity,
			SelectedDate:        req.SelectedDate,
			HorizonDays:         req.HorizonDays,
			TopK:                req.TopK,
			CandidatesEvaluated: evaluated,
			MarketsSkipped:      skipped,
			ModelVersion:        artifact.Version,
			LatencyMS:           time.Since(start).Milliseconds(),
		},
	}
	e.cacheResponse(req, resp)

	metrics.RecordRecommendation(req.Commodity, outcomeFor(resp), time.Since(start), evaluated)
	logger.Debug().
		Int("candidates", evaluated).
		Int("returned", len(resp.Recommendations)).
		Strs("markets_skipped", skipped).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// prepareRequest applies defaults and caps and assigns a request ID.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) Request {
	if req.RequestID == "" {
		req.RequestID = logging.GenerateRequestID()
	}

	if req.HorizonDays == 0 {
		req.HorizonDays = e.config.Limits.DefaultHorizonDays
	}
	if req.HorizonDays > e.config.Limits.MaxHorizonDays {
		req.HorizonDays = e.config.Limits.MaxHorizonDays
	}

	if req.TopK == 0 {
		req.TopK = e.config.Limits.DefaultTopK
	}
	if req.TopK > e.config.Limits.MaxTopK {
		req.TopK = e.config.Limits.MaxTopK
	}

	return req
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Str("commodity", req.Commodity).
		Str("selected_date", req.SelectedDate).
		Int("horizon_days", req.HorizonDays).
		Logger()
}

// scoreCandidates predicts and prices every eligible (date, market) pair in
// enumeration order: date ascending, then market list order.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) scoreCandidates(ctx context.Context, req Request, selected time.Time, artifact *predict.Artifact) ([]candidate, []string, error) {
	type eligible struct {
		market Market
		row    history.FeatureRow
	}

	markets := make([]eligible, 0, len(e.config.Markets))
	skipped := []string{}
	for _, m := range e.config.Markets {
		row, ok := e.features.Latest(m.Name, req.Commodity)
		if !ok {
			skipped = append(skipped, m.Name)
			continue
		}
		markets = append(markets, eligible{market: m, row: row})
	}

	farm := geo.Point{Lat: req.FarmerLat, Lon: req.FarmerLon}
	out := make([]candidate, 0, req.HorizonDays*len(markets))

	for offset := 0; offset < req.HorizonDays; offset++ {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		date := selected.AddDate(0, 0, offset)
		cal := history.CalendarFor(date)
		dateStr := date.Format(history.DateLayout)

		for _, m := range markets {
			features := m.row.LagValues()
			features[history.FeatureDayOfWeek] = float64(cal.DayOfWeek)
			features[history.FeatureMonth] = float64(cal.Month)
			features[history.FeatureIsWeekend] = float64(cal.IsWeekend)
			features[history.FeatureMarketLat] = m.market.Latitude
			features[history.FeatureMarketLon] = m.market.Longitude

			priceKg, err := artifact.PredictPerKg(features)
			if err != nil {
				return nil, nil, err
			}

			distance := farm.DistanceTo(m.market.Point())
			out = append(out, candidate{
				date:      dateStr,
				market:    m.market.Name,
				distance:  distance,
				priceKg:   priceKg,
				breakdown: e.config.Profit.Estimate(priceKg, req.QuantityTonnes, distance),
			})
		}
	}

	return out, skipped, nil
}

// suppliedFeatures are the names scoreCandidates puts in every feature map.
var suppliedFeatures = map[string]struct{}{
	history.FeaturePriceYesterday:    {},
	history.FeaturePriceLastWeek:     {},
	history.FeaturePriceAvg7Days:     {},
	history.FeatureArrivalsYesterday: {},
	history.FeatureDayOfWeek:         {},
	history.FeatureMonth:             {},
	history.FeatureIsWeekend:         {},
	history.FeatureMarketLat:         {},
	history.FeatureMarketLon:         {},
}

// checkFeatureNames rejects an artifact that needs inputs the engine never
// builds, even when no market is eligible and nothing would be predicted.
func checkFeatureNames(a *predict.Artifact) error {
	var missing []string
	for _, name := range a.FeatureNames {
		if _, ok := suppliedFeatures[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &predict.FeatureMismatchError{Commodity: a.Commodity, Missing: missing}
	}
	return nil
}

// rankCandidates orders by unrounded net profit, highest first. Equal
// profits keep enumeration order.
func rankCandidates(c []candidate) {
	sort.SliceStable(c, func(i, j int) bool {
		return c[i].breakdown.NetProfit > c[j].breakdown.NetProfit
	})
}

// buildRecommendations rounds candidates for output.
func buildRecommendations(c []candidate, breakdown bool) []Recommendation {
	recs := make([]Recommendation, len(c))
	for i, cand := range c {
		recs[i] = Recommendation{
			Date:                cand.date,
			MarketName:          cand.market,
			DistanceKM:          profit.Round(cand.distance, 1),
			PredictedPricePerKg: profit.Round(cand.priceKg, 2),
			NetProfit:           profit.Round(cand.breakdown.NetProfit, 0),
		}
		if breakdown {
			revenue := profit.Round(cand.breakdown.Revenue, 0)
			costs := profit.Round(cand.breakdown.TotalCosts, 0)
			recs[i].Revenue = &revenue
			recs[i].TotalCosts = &costs
		}
	}
	return recs
}

func outcomeFor(resp *Response) string {
	if len(resp.Recommendations) == 0 {
		return "empty"
	}
	return "ok"
}

// tryGetCachedResponse returns a copy of a cached response, or nil.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(req Request, start time.Time, logger zerolog.Logger) *Response {
	if e.cache == nil {
		return nil
	}

	cached, ok := e.cache.Get(req.cacheKey())
	metrics.RecordRecommendationCache(ok)
	if !ok {
		e.cacheMisses.Add(1)
		return nil
	}

	e.cacheHits.Add(1)
	resp := copyCachedResponse(cached)
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	logger.Debug().Msg("cache hit")
	return resp
}

// cacheResponse stores a private copy of resp.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) cacheResponse(req Request, resp *Response) {
	if e.cache != nil {
		e.cache.Add(req.cacheKey(), copyCachedResponse(resp))
	}
}

// copyCachedResponse copies the slices of a response so callers cannot
// mutate cached state. Breakdown pointers are never written after creation
// and are shared.
func copyCachedResponse(resp *Response) *Response {
	recs := make([]Recommendation, len(resp.Recommendations))
	copy(recs, resp.Recommendations)

	md := resp.Metadata
	md.MarketsSkipped = append([]string{}, resp.Metadata.MarketsSkipped...)

	return &Response{Recommendations: recs, Metadata: md}
}

// Markets returns the configured markets in evaluation order.
func (e *Engine) Markets() []Market {
	return append([]Market(nil), e.config.Markets...)
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	m := Metrics{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
	}
	if e.cache != nil {
		m.CacheSize = e.cache.Len()
	}
	return m
}

// CleanupCache drops expired cached responses and returns how many were removed.
func (e *Engine) CleanupCache() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.CleanupExpired()
}
