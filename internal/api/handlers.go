// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package api

import (
	"context"
	"errors"
	"time"

	"github.com/mohan-p-hp/market-recomender/internal/recommend"
)

// DefaultRequestTimeout bounds a single recommendation request.
const DefaultRequestTimeout = 10 * time.Second

// Recommender produces recommendations. *recommend.Engine implements it.
type Recommender interface {
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
	Markets() []recommend.Market
}

// FeatureCatalog describes the loaded feature table.
// *history.FeatureTable implements it.
type FeatureCatalog interface {
	Len() int
	Commodities() []string
}

// ModelCatalog lists commodities whose predictor is held in memory.
// *predict.Registry implements it.
type ModelCatalog interface {
	Loaded() []string
}

// Pinger checks a backing store. *database.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerDeps are the dependencies of Handler. DB and Models are optional.
type HandlerDeps struct {
	Engine   Recommender
	Features FeatureCatalog
	Models   ModelCatalog
	DB       Pinger

	// RequestTimeout bounds each recommendation. Zero selects
	// DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor
//   - handlers_recommend.go: recommendation endpoint
//   - handlers_health.go: welcome, catalog and health endpoints
type Handler struct {
	engine         Recommender
	features       FeatureCatalog
	models         ModelCatalog
	db             Pinger
	requestTimeout time.Duration
	startTime      time.Time
}

// NewHandler creates the API handler.
func NewHandler(deps HandlerDeps) (*Handler, error) {
	if deps.Engine == nil {
		return nil, errors.New("api: recommendation engine is required")
	}
	if deps.Features == nil {
		return nil, errors.New("api: feature catalog is required")
	}

	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	return &Handler{
		engine:         deps.Engine,
		features:       deps.Features,
		models:         deps.Models,
		db:             deps.DB,
		requestTimeout: timeout,
		startTime:      time.Now(),
	}, nil
}
