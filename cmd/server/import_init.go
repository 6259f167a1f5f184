// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package main

import (
	"context"
	"fmt"

	"github.com/mohan-p-hp/market-recomender/internal/config"
	"github.com/mohan-p-hp/market-recomender/internal/database"
	"github.com/mohan-p-hp/market-recomender/internal/history"
	"github.com/mohan-p-hp/market-recomender/internal/ingest"
	"github.com/mohan-p-hp/market-recomender/internal/logging"
	"github.com/mohan-p-hp/market-recomender/internal/metrics"
)

// runStartupImport loads the configured CSV into the price store.
// A file whose checksum matches the last completed import is not read again.
func runStartupImport(ctx context.Context, cfg *config.Config, db *database.DB) error {
	if !cfg.Data.ImportOnStartup || cfg.Data.CSVPath == "" {
		logging.Info().Msg("CSV import on startup disabled")
		return nil
	}

	var progress ingest.ProgressTracker
	if cfg.Data.ProgressPath != "" {
		bdb, err := ingest.OpenBadger(cfg.Data.ProgressPath)
		if err != nil {
			return fmt.Errorf("open import progress: %w", err)
		}
		defer func() {
			if err := bdb.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing import progress store")
			}
		}()
		progress = ingest.NewBadgerProgress(bdb)
	} else {
		progress = ingest.NewInMemoryProgress()
	}

	importer := ingest.NewImporter(db, progress, ingest.Options{BatchSize: cfg.Data.BatchSize})
	stats, err := importer.Import(ctx, cfg.Data.CSVPath)
	if err != nil {
		return fmt.Errorf("import %s: %w", cfg.Data.CSVPath, err)
	}

	if stats.Unchanged {
		logging.Info().
			Str("source", stats.Source).
			Str("checksum", stats.Checksum).
			Msg("Price file unchanged since last import")
		return nil
	}
	logging.Info().
		Str("source", stats.Source).
		Int64("rows", stats.Rows).
		Int64("imported", stats.Imported).
		Int64("skipped", stats.Skipped).
		Dur("duration", stats.Duration()).
		Msg("Price file imported")
	return nil
}

// loadFeatureTable reads the full price history and derives features.
func loadFeatureTable(ctx context.Context, db *database.DB) (*history.FeatureTable, error) {
	h, err := db.LoadPriceHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load price history: %w", err)
	}
	table := history.NewFeatureTable(h)
	metrics.SetFeatureTableRows(table.Len())

	logging.Info().
		Int("records", h.Len()).
		Int("series", len(h.Keys())).
		Int("feature_rows", table.Len()).
		Strs("commodities", table.Commodities()).
		Msg("Feature table built")
	if table.Len() == 0 {
		logging.Warn().Msg("No price history loaded; readiness checks will fail until data is imported")
	}
	return table, nil
}
