// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package ingest imports daily market prices from CSV into the price store.

The expected header is

	market_name,commodity,date,modal_price,arrivals_qty

in any column order; extra columns are ignored. Dates are YYYY-MM-DD.
Rows with empty names, bad dates or negative or non-numeric amounts are
skipped and counted rather than failing the import.

Completed imports are recorded by a ProgressTracker keyed by file path.
With the BadgerDB tracker a restart does not re-read a file whose SHA-256
has not changed:

	bdb, err := ingest.OpenBadger(cfg.Data.ProgressPath)
	...
	imp := ingest.NewImporter(db, ingest.NewBadgerProgress(bdb), ingest.Options{BatchSize: 1000})
	stats, err := imp.Import(ctx, cfg.Data.CSVPath)
*/
package ingest
