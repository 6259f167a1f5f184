// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package database stores daily market prices in DuckDB.

The single table price_records is keyed by (market_name, commodity, date).
Writes are upserts, so re-importing a CSV replaces rows instead of
duplicating them. At startup the server reads the whole table once with
LoadPriceHistory and builds the feature table from it; requests never touch
the database.

	db, err := database.New(&cfg.Database)
	if err != nil {
	    return err
	}
	defer db.Close()

	h, err := db.LoadPriceHistory(ctx)

Query durations and errors are exported through the metrics package.
*/
package database
