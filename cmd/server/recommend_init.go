// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mohan-p-hp/market-recomender/internal/config"
	"github.com/mohan-p-hp/market-recomender/internal/history"
	"github.com/mohan-p-hp/market-recomender/internal/recommend"
	"github.com/mohan-p-hp/market-recomender/internal/recommend/predict"
	"github.com/mohan-p-hp/market-recomender/internal/recommend/storage"
	"github.com/mohan-p-hp/market-recomender/internal/supervisor/services"
)

// RecommendComponents holds the recommendation pipeline.
type RecommendComponents struct {
	Store    *storage.Store
	Registry *predict.Registry
	Engine   *recommend.Engine
	Warmup   *services.WarmupService
}

// initRecommend opens the artifact store and builds the engine on top of
// the feature table.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, table *history.FeatureTable, logger zerolog.Logger) (*RecommendComponents, error) {
	store, err := storage.NewStore(cfg.Recommend.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("open artifact store: %w", err)
	}

	registry := predict.NewRegistry(store, cfg.RegistryConfig())

	engine, err := recommend.NewEngine(cfg.EngineConfig(), table, registry, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	// Warm everything on disk unless a subset is configured.
	warm := cfg.Recommend.WarmCommodities
	if len(warm) == 0 {
		warm = store.Commodities()
	}

	warmup := services.NewWarmupService(registry, engine, services.WarmupServiceConfig{
		Commodities:   warm,
		StatsInterval: cfg.Recommend.StatsInterval,
	}, logger)

	logger.Info().
		Str("model_path", cfg.Recommend.ModelPath).
		Strs("stored_commodities", store.Commodities()).
		Int("markets", len(engine.Markets())).
		Msg("Recommendation engine initialized")

	return &RecommendComponents{
		Store:    store,
		Registry: registry,
		Engine:   engine,
		Warmup:   warmup,
	}, nil
}
