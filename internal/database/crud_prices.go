// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package database

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/mohan-p-hp/market-recomender/internal/history"
	"github.com/mohan-p-hp/market-recomender/internal/logging"
	"github.com/mohan-p-hp/market-recomender/internal/metrics"
)

const maxUpsertAttempts = 3

const upsertPriceQuery = `INSERT INTO price_records (market_name, commodity, date, modal_price, arrivals_qty)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (market_name, commodity, date) DO UPDATE SET
		modal_price = EXCLUDED.modal_price,
		arrivals_qty = EXCLUDED.arrivals_qty,
		updated_at = current_timestamp`

// ValidateRecord checks that a record can be stored.
func ValidateRecord(r *history.PriceRecord) error {
	switch {
	case r.MarketName == "":
		return fmt.Errorf("%w: empty market name", ErrInvalidRecord)
	case r.Commodity == "":
		return fmt.Errorf("%w: empty commodity", ErrInvalidRecord)
	case r.Date.IsZero():
		return fmt.Errorf("%w: missing date", ErrInvalidRecord)
	case !validAmount(r.ModalPrice):
		return fmt.Errorf("%w: modal price %v", ErrInvalidRecord, r.ModalPrice)
	case !validAmount(r.ArrivalsQty):
		return fmt.Errorf("%w: arrivals %v", ErrInvalidRecord, r.ArrivalsQty)
	}
	return nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// UpsertPriceRecords writes records in one transaction. An existing
// (market, commodity, date) row is replaced; within the batch the last
// occurrence of a key wins. Returns the number of rows written.
//
// Transaction conflicts are retried up to maxUpsertAttempts times.
func (db *DB) UpsertPriceRecords(ctx context.Context, records []history.PriceRecord) (written int, err error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch, err := dedupeBatch(records)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("upsert", "price_records", time.Since(start), err)
	}()

	for attempt := 1; attempt <= maxUpsertAttempts; attempt++ {
		err = db.upsertBatch(ctx, batch)
		if err == nil {
			return len(batch), nil
		}
		if !isTransactionConflict(err) || attempt == maxUpsertAttempts {
			break
		}
		logging.Warn().Err(err).Int("attempt", attempt).Msg("Price upsert conflicted, retrying")

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return 0, err
}

// dedupeBatch validates records and keeps the last occurrence of each key,
// preserving first-seen order.
func dedupeBatch(records []history.PriceRecord) ([]history.PriceRecord, error) {
	type key struct {
		market, commodity string
		day               time.Time
	}

	index := make(map[key]int, len(records))
	out := make([]history.PriceRecord, 0, len(records))
	for i := range records {
		rec := records[i]
		if err := ValidateRecord(&rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		rec.Date = history.TruncateDate(rec.Date)

		k := key{rec.MarketName, rec.Commodity, rec.Date}
		if pos, ok := index[k]; ok {
			out[pos] = rec
			continue
		}
		index[k] = len(out)
		out = append(out, rec)
	}
	return out, nil
}

func (db *DB) upsertBatch(ctx context.Context, batch []history.PriceRecord) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logging.Error().Err(rbErr).AnErr("original_error", err).Msg("Transaction rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertPriceQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer closeWithLog(stmt, "prepared statement")

	for i := range batch {
		r := &batch[i]
		if _, err = stmt.ExecContext(ctx, r.MarketName, r.Commodity, r.Date, r.ModalPrice, r.ArrivalsQty); err != nil {
			return fmt.Errorf("failed to upsert %s/%s on %s: %w",
				r.MarketName, r.Commodity, r.Date.Format(history.DateLayout), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LoadPriceHistory reads every stored record, ordered by market, commodity
// and date.
func (db *DB) LoadPriceHistory(ctx context.Context) (h *history.PriceHistory, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", "price_records", time.Since(start), err)
	}()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT market_name, commodity, date, modal_price, arrivals_qty
		FROM price_records
		ORDER BY market_name, commodity, date`)
	if err != nil {
		return nil, fmt.Errorf("failed to query price records: %w", err)
	}
	defer closeWithLog(rows, "rows")

	var records []history.PriceRecord
	for rows.Next() {
		var r history.PriceRecord
		if err = rows.Scan(&r.MarketName, &r.Commodity, &r.Date, &r.ModalPrice, &r.ArrivalsQty); err != nil {
			return nil, fmt.Errorf("failed to scan price record: %w", err)
		}
		r.Date = history.TruncateDate(r.Date)
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price records: %w", err)
	}

	return history.NewPriceHistory(records), nil
}

// CountPriceRecords returns the number of stored records.
func (db *DB) CountPriceRecords(ctx context.Context) (int64, error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	var n int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM price_records`).Scan(&n)
	metrics.RecordDBQuery("count", "price_records", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count price records: %w", err)
	}
	return n, nil
}

// LatestPriceDate returns the most recent observation date for a commodity.
// ok is false when the commodity has no records.
func (db *DB) LatestPriceDate(ctx context.Context, commodity string) (latest time.Time, ok bool, err error) {
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	var d sql.NullTime
	err = db.conn.QueryRowContext(ctx,
		`SELECT MAX(date) FROM price_records WHERE commodity = ?`, commodity).Scan(&d)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query latest date: %w", err)
	}
	if !d.Valid {
		return time.Time{}, false, nil
	}
	return history.TruncateDate(d.Time), true, nil
}
