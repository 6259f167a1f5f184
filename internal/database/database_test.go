// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package database

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mohan-p-hp/market-recomender/internal/config"
	"github.com/mohan-p-hp/market-recomender/internal/history"
)

// testDBSemaphore serializes DuckDB tests; concurrent CGO connections
// across tests have been seen to hang under CI load.
var testDBSemaphore = make(chan struct{}, 1)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() { <-testDBSemaphore })

	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func day(s string) time.Time {
	t, err := history.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(market, commodity, date string, price float64) history.PriceRecord {
	return history.PriceRecord{
		MarketName:  market,
		Commodity:   commodity,
		Date:        day(date),
		ModalPrice:  price,
		ArrivalsQty: 120,
	}
}

func TestNew_RequiresPath(t *testing.T) {
	if _, err := New(&config.DatabaseConfig{}); err == nil {
		t.Error("New() should reject an empty path")
	}
	if _, err := New(nil); err == nil {
		t.Error("New() should reject a nil config")
	}
}

func TestNew_FileDatabasePersists(t *testing.T) {
	testDBSemaphore <- struct{}{}
	defer func() { <-testDBSemaphore }()

	path := filepath.Join(t.TempDir(), "nested", "prices.duckdb")
	ctx := context.Background()

	db, err := New(&config.DatabaseConfig{Path: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := db.UpsertPriceRecords(ctx, []history.PriceRecord{rec("Pune_Mandi", "Onion", "2024-01-01", 1800)}); err != nil {
		t.Fatalf("UpsertPriceRecords() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(&config.DatabaseConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	n, err := reopened.CountPriceRecords(ctx)
	if err != nil || n != 1 {
		t.Errorf("CountPriceRecords() = %d, %v; want 1", n, err)
	}
	if reopened.Path() != path {
		t.Errorf("Path() = %q", reopened.Path())
	}
}

func TestUpsertPriceRecords_LoadOrdered(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	records := []history.PriceRecord{
		rec("Pune_Mandi", "Onion", "2024-01-02", 1850),
		rec("Delhi_Mandi", "Tomato", "2024-01-01", 2200),
		rec("Delhi_Mandi", "Onion", "2024-01-02", 2450),
		rec("Pune_Mandi", "Onion", "2024-01-01", 1800),
		rec("Delhi_Mandi", "Onion", "2024-01-01", 2400),
	}
	n, err := db.UpsertPriceRecords(ctx, records)
	if err != nil {
		t.Fatalf("UpsertPriceRecords() error = %v", err)
	}
	if n != len(records) {
		t.Errorf("written = %d, want %d", n, len(records))
	}

	h, err := db.LoadPriceHistory(ctx)
	if err != nil {
		t.Fatalf("LoadPriceHistory() error = %v", err)
	}
	got := h.Records()

	want := []string{
		"Delhi_Mandi/Onion/2024-01-01",
		"Delhi_Mandi/Onion/2024-01-02",
		"Delhi_Mandi/Tomato/2024-01-01",
		"Pune_Mandi/Onion/2024-01-01",
		"Pune_Mandi/Onion/2024-01-02",
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		k := got[i].MarketName + "/" + got[i].Commodity + "/" + got[i].Date.Format(history.DateLayout)
		if k != w {
			t.Errorf("record %d = %s, want %s", i, k, w)
		}
		if got[i].Date.Location() != time.UTC {
			t.Errorf("record %d date not in UTC: %v", i, got[i].Date)
		}
	}
	if got[0].ModalPrice != 2400 || got[0].ArrivalsQty != 120 {
		t.Errorf("first record = %+v", got[0])
	}
}

func TestUpsertPriceRecords_ReplacesExisting(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.UpsertPriceRecords(ctx, []history.PriceRecord{rec("Pune_Mandi", "Onion", "2024-01-01", 1800)}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.UpsertPriceRecords(ctx, []history.PriceRecord{rec("Pune_Mandi", "Onion", "2024-01-01", 1900)}); err != nil {
		t.Fatal(err)
	}

	h, err := db.LoadPriceHistory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if h.Len() != 1 || h.Records()[0].ModalPrice != 1900 {
		t.Errorf("records = %+v, want one record at 1900", h.Records())
	}
}

func TestUpsertPriceRecords_DuplicateInBatchLastWins(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	n, err := db.UpsertPriceRecords(ctx, []history.PriceRecord{
		rec("Pune_Mandi", "Onion", "2024-01-01", 1800),
		rec("Pune_Mandi", "Onion", "2024-01-02", 1810),
		rec("Pune_Mandi", "Onion", "2024-01-01", 1820),
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("written = %d, want 2", n)
	}

	h, err := db.LoadPriceHistory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := h.Records()[0].ModalPrice; got != 1820 {
		t.Errorf("2024-01-01 price = %v, want 1820", got)
	}
}

func TestUpsertPriceRecords_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *history.PriceRecord)
	}{
		{"empty market", func(r *history.PriceRecord) { r.MarketName = "" }},
		{"empty commodity", func(r *history.PriceRecord) { r.Commodity = "" }},
		{"zero date", func(r *history.PriceRecord) { r.Date = time.Time{} }},
		{"negative price", func(r *history.PriceRecord) { r.ModalPrice = -1 }},
		{"nan arrivals", func(r *history.PriceRecord) { r.ArrivalsQty = math.NaN() }},
	}

	db := setupTestDB(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bad := rec("Pune_Mandi", "Onion", "2024-01-01", 1800)
			tt.mutate(&bad)

			batch := []history.PriceRecord{rec("Delhi_Mandi", "Onion", "2024-01-01", 2400), bad}
			_, err := db.UpsertPriceRecords(context.Background(), batch)
			if !errors.Is(err, ErrInvalidRecord) {
				t.Fatalf("error = %v, want ErrInvalidRecord", err)
			}
			if !strings.Contains(err.Error(), "record 1") {
				t.Errorf("error should name the record index: %v", err)
			}
		})
	}

	// Nothing from the rejected batches was written.
	if n, _ := db.CountPriceRecords(context.Background()); n != 0 {
		t.Errorf("CountPriceRecords() = %d, want 0", n)
	}
}

func TestUpsertPriceRecords_Empty(t *testing.T) {
	db := setupTestDB(t)
	if n, err := db.UpsertPriceRecords(context.Background(), nil); n != 0 || err != nil {
		t.Errorf("UpsertPriceRecords(nil) = %d, %v", n, err)
	}
}

func TestLatestPriceDate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, ok, err := db.LatestPriceDate(ctx, "Onion"); ok || err != nil {
		t.Fatalf("empty table: ok=%v err=%v", ok, err)
	}

	if _, err := db.UpsertPriceRecords(ctx, []history.PriceRecord{
		rec("Pune_Mandi", "Onion", "2024-01-01", 1800),
		rec("Delhi_Mandi", "Onion", "2024-03-05", 2400),
		rec("Delhi_Mandi", "Tomato", "2024-04-01", 900),
	}); err != nil {
		t.Fatal(err)
	}

	latest, ok, err := db.LatestPriceDate(ctx, "Onion")
	if err != nil || !ok {
		t.Fatalf("LatestPriceDate() ok=%v err=%v", ok, err)
	}
	if !latest.Equal(day("2024-03-05")) {
		t.Errorf("latest = %v, want 2024-03-05", latest)
	}
}

func TestLoadPriceHistory_Empty(t *testing.T) {
	db := setupTestDB(t)
	h, err := db.LoadPriceHistory(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestPing(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
