// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// progressKeyPrefix namespaces progress entries by source path.
const progressKeyPrefix = "ingest:csv:progress:"

// ProgressTracker records completed imports so unchanged files can be
// skipped on restart.
type ProgressTracker interface {
	// Save persists stats for stats.Source.
	Save(ctx context.Context, stats *ImportStats) error

	// Load returns the last saved stats for source, or nil, nil.
	Load(ctx context.Context, source string) (*ImportStats, error)

	// Clear removes saved stats for source.
	Clear(ctx context.Context, source string) error
}

// OpenBadger opens the progress database at dir. An empty dir opens an
// in-memory instance.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open progress store: %w", err)
	}
	return db, nil
}

// BadgerProgress implements ProgressTracker on BadgerDB.
type BadgerProgress struct {
	db *badger.DB
}

// NewBadgerProgress creates a tracker on an open BadgerDB.
func NewBadgerProgress(db *badger.DB) *BadgerProgress {
	return &BadgerProgress{db: db}
}

func progressKey(source string) []byte {
	return []byte(progressKeyPrefix + source)
}

// Save implements ProgressTracker.
func (p *BadgerProgress) Save(_ context.Context, stats *ImportStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return p.db.Update(func(txn *badger.Txn) error {
		return txn.Set(progressKey(stats.Source), data)
	})
}

// Load implements ProgressTracker.
func (p *BadgerProgress) Load(_ context.Context, source string) (*ImportStats, error) {
	var stats *ImportStats

	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(progressKey(source))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			stats = &ImportStats{}
			return json.Unmarshal(val, stats)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	return stats, nil
}

// Clear implements ProgressTracker.
func (p *BadgerProgress) Clear(_ context.Context, source string) error {
	return p.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(progressKey(source))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// InMemoryProgress implements ProgressTracker without persistence.
type InMemoryProgress struct {
	mu    sync.Mutex
	stats map[string]ImportStats
}

// NewInMemoryProgress creates an empty in-memory tracker.
func NewInMemoryProgress() *InMemoryProgress {
	return &InMemoryProgress{stats: make(map[string]ImportStats)}
}

// Save implements ProgressTracker.
func (p *InMemoryProgress) Save(_ context.Context, stats *ImportStats) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats[stats.Source] = *stats
	return nil
}

// Load implements ProgressTracker.
func (p *InMemoryProgress) Load(_ context.Context, source string) (*ImportStats, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.stats[source]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Clear implements ProgressTracker.
func (p *InMemoryProgress) Clear(_ context.Context, source string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.stats, source)
	return nil
}
