// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mohan-p-hp/market-recomender/internal/metrics"
	"github.com/mohan-p-hp/market-recomender/internal/recommend/predict"
)

// ArtifactRegistry is the part of *predict.Registry the warmup service uses.
type ArtifactRegistry interface {
	Warm(ctx context.Context, commodities []string) error
	Stats() predict.RegistryStats
}

// CacheCleaner drops expired cached responses. *recommend.Engine implements it.
type CacheCleaner interface {
	CleanupCache() int
}

// WarmupServiceConfig holds configuration for the warmup service.
type WarmupServiceConfig struct {
	// Commodities are preloaded when the service starts.
	Commodities []string

	// StatsInterval is how often registry gauges are published and the
	// response cache is swept. Default: 30s.
	StatsInterval time.Duration
}

// WarmupService preloads predictor artifacts and then keeps registry
// metrics current until shutdown. A failed warmup is retried on each tick
// until it succeeds; missing models are not failures.
type WarmupService struct {
	registry ArtifactRegistry
	cache    CacheCleaner
	config   WarmupServiceConfig
	logger   zerolog.Logger
}

// NewWarmupService creates the service. cache may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWarmupService(registry ArtifactRegistry, cache CacheCleaner, cfg WarmupServiceConfig, logger zerolog.Logger) *WarmupService {
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = 30 * time.Second
	}
	return &WarmupService{
		registry: registry,
		cache:    cache,
		config:   cfg,
		logger:   logger.With().Str("service", "artifact-warmup").Logger(),
	}
}

// Serve implements suture.Service.
func (s *WarmupService) Serve(ctx context.Context) error {
	s.logger.Info().
		Strs("commodities", s.config.Commodities).
		Dur("stats_interval", s.config.StatsInterval).
		Msg("Artifact warmup service starting")

	warmed := s.warm(ctx)

	ticker := time.NewTicker(s.config.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Artifact warmup service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if !warmed {
				warmed = s.warm(ctx)
			}
			s.publish()
		}
	}
}

// warm reports whether every configured commodity was loaded or is absent.
func (s *WarmupService) warm(ctx context.Context) bool {
	if len(s.config.Commodities) == 0 {
		return true
	}

	start := time.Now()
	if err := s.registry.Warm(ctx, s.config.Commodities); err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("Artifact warmup failed, will retry")
		}
		return false
	}

	stats := s.registry.Stats()
	s.logger.Info().
		Int("loaded", stats.Loaded).
		Dur("duration", time.Since(start)).
		Msg("Predictor artifacts warmed")
	s.publish()
	return true
}

func (s *WarmupService) publish() {
	stats := s.registry.Stats()
	metrics.SetArtifactsLoaded(stats.Loaded)

	evicted := 0
	if s.cache != nil {
		evicted = s.cache.CleanupCache()
	}

	s.logger.Debug().
		Int("loaded", stats.Loaded).
		Int64("source_reads", stats.SourceReads).
		Str("breaker_state", stats.BreakerState).
		Int("cache_evicted", evicted).
		Msg("Registry stats")
}

// String implements fmt.Stringer.
func (s *WarmupService) String() string {
	return "artifact-warmup"
}
