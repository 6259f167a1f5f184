// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package database

import (
	"context"
	"fmt"
)

// schemaQueries create the tables. Every statement is idempotent.
var schemaQueries = []string{
	`CREATE TABLE IF NOT EXISTS price_records (
		market_name  VARCHAR NOT NULL,
		commodity    VARCHAR NOT NULL,
		date         DATE NOT NULL,
		modal_price  DOUBLE NOT NULL,
		arrivals_qty DOUBLE NOT NULL,
		updated_at   TIMESTAMP DEFAULT current_timestamp,
		PRIMARY KEY (market_name, commodity, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_price_records_commodity ON price_records(commodity)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, q := range schemaQueries {
		if _, err := db.conn.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
