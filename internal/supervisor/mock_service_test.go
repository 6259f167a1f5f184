// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService implements suture.Service for tree tests.
type mockService struct {
	name       string
	startCount atomic.Int32
	failures   atomic.Int32
	failFirst  int32
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

// Serve fails the first failFirst calls, then runs until ctx is done.
func (m *mockService) Serve(ctx context.Context) error {
	m.startCount.Add(1)
	if m.failures.Add(1) <= m.failFirst {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }
