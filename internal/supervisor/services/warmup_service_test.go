// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/mohan-p-hp/market-recomender/internal/metrics"
	"github.com/mohan-p-hp/market-recomender/internal/recommend/predict"
)

var _ suture.Service = (*WarmupService)(nil)

type fakeRegistry struct {
	mu        sync.Mutex
	warmed    [][]string
	failFirst int
	loaded    int
}

func (f *fakeRegistry) Warm(_ context.Context, commodities []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.warmed = append(f.warmed, commodities)
	if len(f.warmed) <= f.failFirst {
		return errors.New("artifact store unavailable")
	}
	f.loaded = len(commodities)
	return nil
}

func (f *fakeRegistry) Stats() predict.RegistryStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return predict.RegistryStats{Loaded: f.loaded, BreakerState: "closed"}
}

func (f *fakeRegistry) warmCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.warmed)
}

type countingCleaner struct{ calls atomic.Int32 }

func (c *countingCleaner) CleanupCache() int {
	c.calls.Add(1)
	return 0
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within 2s")
}

func runService(t *testing.T, svc suture.Service) (cancel func()) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	return func() {
		cancelFn()
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("service did not stop")
		}
	}
}

func TestWarmupService_WarmsOnStart(t *testing.T) {
	reg := &fakeRegistry{}
	svc := NewWarmupService(reg, nil, WarmupServiceConfig{
		Commodities:   []string{"Tomato", "Onion"},
		StatsInterval: time.Hour,
	}, zerolog.Nop())

	stop := runService(t, svc)
	eventually(t, func() bool { return reg.warmCalls() == 1 })
	stop()

	if got := testutil.ToFloat64(metrics.ArtifactsLoaded); got != 2 {
		t.Errorf("artifacts loaded gauge = %v, want 2", got)
	}
}

func TestWarmupService_RetriesFailedWarmup(t *testing.T) {
	reg := &fakeRegistry{failFirst: 2}
	cleaner := &countingCleaner{}
	svc := NewWarmupService(reg, cleaner, WarmupServiceConfig{
		Commodities:   []string{"Tomato"},
		StatsInterval: 10 * time.Millisecond,
	}, zerolog.Nop())

	stop := runService(t, svc)
	eventually(t, func() bool { return reg.warmCalls() >= 3 && cleaner.calls.Load() >= 2 })
	stop()

	// Once warm, ticks only publish stats.
	calls := reg.warmCalls()
	if calls != 3 {
		t.Errorf("Warm calls = %d, want 3", calls)
	}
}

func TestWarmupService_NoCommodities(t *testing.T) {
	reg := &fakeRegistry{}
	cleaner := &countingCleaner{}
	svc := NewWarmupService(reg, cleaner, WarmupServiceConfig{StatsInterval: 10 * time.Millisecond}, zerolog.Nop())

	stop := runService(t, svc)
	eventually(t, func() bool { return cleaner.calls.Load() >= 1 })
	stop()

	if reg.warmCalls() != 0 {
		t.Errorf("Warm called %d times with no commodities", reg.warmCalls())
	}
}

func TestNewWarmupService_Defaults(t *testing.T) {
	svc := NewWarmupService(&fakeRegistry{}, nil, WarmupServiceConfig{}, zerolog.Nop())
	if svc.config.StatsInterval != 30*time.Second {
		t.Errorf("StatsInterval = %v, want 30s", svc.config.StatsInterval)
	}
	if svc.String() != "artifact-warmup" {
		t.Errorf("String() = %q", svc.String())
	}
}
