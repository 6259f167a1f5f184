// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package predict

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/mohan-p-hp/market-recomender/internal/logging"
	"github.com/mohan-p-hp/market-recomender/internal/metrics"
)

// Source reads predictor artifacts from durable storage.
type Source interface {
	// LoadArtifact returns the artifact for commodity, or an error wrapping
	// ErrModelNotFound when none exists.
	LoadArtifact(ctx context.Context, commodity string) (*Artifact, error)
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// LoadTimeout bounds a single read from the source.
	// Default: 30s.
	LoadTimeout time.Duration

	// Breaker settings for the source.
	Breaker BreakerConfig
}

// DefaultRegistryConfig returns production defaults.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		LoadTimeout: 30 * time.Second,
		Breaker:     DefaultBreakerConfig(),
	}
}

// RegistryStats is a point-in-time snapshot of registry state.
type RegistryStats struct {
	Loaded       int    `json:"loaded"`
	SourceReads  int64  `json:"source_reads"`
	BreakerState string `json:"breaker_state"`
}

// Registry caches artifacts per commodity. Each commodity is read from the
// source at most once while concurrent first requests share the read.
// Missing commodities are not remembered, so a model added later is found.
type Registry struct {
	source      *breakerSource
	loadTimeout time.Duration

	models sync.Map // commodity -> *Artifact
	count  atomic.Int64
	reads  atomic.Int64
	group  singleflight.Group

	logger zerolog.Logger
}

// NewRegistry creates a registry reading from src.
func NewRegistry(src Source, cfg RegistryConfig) *Registry {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = DefaultRegistryConfig().LoadTimeout
	}
	return &Registry{
		source:      newBreakerSource(src, cfg.Breaker),
		loadTimeout: cfg.LoadTimeout,
		logger:      logging.Logger().With().Str("component", "predictor-registry").Logger(),
	}
}

// Load returns the artifact for commodity, reading it on first use.
func (r *Registry) Load(ctx context.Context, commodity string) (*Artifact, error) {
	if a, ok := r.models.Load(commodity); ok {
		return a.(*Artifact), nil
	}

	ch := r.group.DoChan(commodity, func() (interface{}, error) {
		if a, ok := r.models.Load(commodity); ok {
			return a, nil
		}
		// The read outlives any single caller so that waiters are not
		// failed by the first caller's cancellation.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.loadTimeout)
		defer cancel()
		return r.read(loadCtx, commodity)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Artifact), nil
	}
}

func (r *Registry) read(ctx context.Context, commodity string) (*Artifact, error) {
	start := time.Now()
	r.reads.Add(1)

	a, err := r.source.LoadArtifact(ctx, commodity)
	if err != nil {
		result := "error"
		if errors.Is(err, ErrModelNotFound) {
			result = "not_found"
		}
		metrics.RecordArtifactLoad(commodity, result, time.Since(start))
		if result == "not_found" {
			return nil, err
		}
		return nil, fmt.Errorf("load artifact %s: %w", commodity, err)
	}

	if err := a.Validate(); err != nil {
		metrics.RecordArtifactLoad(commodity, "invalid", time.Since(start))
		return nil, err
	}
	if a.Commodity != commodity {
		metrics.RecordArtifactLoad(commodity, "invalid", time.Since(start))
		return nil, fmt.Errorf("%w: store returned %q for %q", ErrInvalidArtifact, a.Commodity, commodity)
	}

	if _, loaded := r.models.LoadOrStore(commodity, a); !loaded {
		metrics.SetArtifactsLoaded(int(r.count.Add(1)))
	}
	metrics.RecordArtifactLoad(commodity, "loaded", time.Since(start))

	r.logger.Info().
		Str("commodity", commodity).
		Str("kind", a.Model.Kind()).
		Int("version", a.Version).
		Int("features", len(a.FeatureNames)).
		Dur("duration", time.Since(start)).
		Msg("Loaded predictor artifact")

	return a, nil
}

// Warm loads the given commodities ahead of the first request. Missing
// models are logged and skipped; any other failure is returned.
func (r *Registry) Warm(ctx context.Context, commodities []string) error {
	var errs []error
	for _, c := range commodities {
		if _, err := r.Load(ctx, c); err != nil {
			if errors.Is(err, ErrModelNotFound) {
				r.logger.Warn().Str("commodity", c).Msg("No predictor artifact to warm")
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Loaded returns the commodities currently held in memory, sorted.
func (r *Registry) Loaded() []string {
	var out []string
	r.models.Range(func(k, _ any) bool {
		out = append(out, k.(string))
		return true
	})
	sort.Strings(out)
	return out
}

// Stats returns a snapshot of registry counters.
func (r *Registry) Stats() RegistryStats {
	return RegistryStats{
		Loaded:       int(r.count.Load()),
		SourceReads:  r.reads.Load(),
		BreakerState: r.source.State(),
	}
}

// MemorySource is a Source backed by a map. Lookups are exact.
type MemorySource struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
}

// NewMemorySource returns a source holding the given artifacts keyed by
// their commodity.
func NewMemorySource(artifacts ...*Artifact) *MemorySource {
	m := &MemorySource{artifacts: make(map[string]*Artifact, len(artifacts))}
	for _, a := range artifacts {
		m.artifacts[a.Commodity] = a
	}
	return m
}

// Put adds or replaces an artifact.
func (m *MemorySource) Put(a *Artifact) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifacts[a.Commodity] = a
}

// LoadArtifact implements Source.
func (m *MemorySource) LoadArtifact(ctx context.Context, commodity string) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.artifacts[commodity]
	if !ok {
		return nil, NotFound(commodity)
	}
	return a, nil
}
