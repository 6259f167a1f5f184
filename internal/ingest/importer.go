// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mohan-p-hp/market-recomender/internal/history"
	"github.com/mohan-p-hp/market-recomender/internal/logging"
	"github.com/mohan-p-hp/market-recomender/internal/metrics"
)

// DefaultBatchSize is used when Options.BatchSize is not positive.
const DefaultBatchSize = 1000

// Required CSV columns. They may appear in any order.
const (
	ColumnMarketName  = "market_name"
	ColumnCommodity   = "commodity"
	ColumnDate        = "date"
	ColumnModalPrice  = "modal_price"
	ColumnArrivalsQty = "arrivals_qty"
)

var requiredColumns = []string{ColumnMarketName, ColumnCommodity, ColumnDate, ColumnModalPrice, ColumnArrivalsQty}

// ErrImportRunning is returned when Import is called during another import.
var ErrImportRunning = errors.New("import already in progress")

// PriceWriter stores validated price records. *database.DB implements it.
type PriceWriter interface {
	UpsertPriceRecords(ctx context.Context, records []history.PriceRecord) (int, error)

	// CountPriceRecords reports how many rows the store holds. An empty
	// store is always re-imported, whatever the progress ledger says.
	CountPriceRecords(ctx context.Context) (int64, error)
}

// Options configure an Importer.
type Options struct {
	// BatchSize is the number of rows written per call to the PriceWriter.
	BatchSize int

	// Force re-imports files whose checksum matches the last import.
	Force bool
}

// Importer loads market_prices.csv style files into the price store.
type Importer struct {
	writer   PriceWriter
	progress ProgressTracker
	opts     Options

	mu      sync.RWMutex
	running bool
	stats   *ImportStats
}

// NewImporter creates an importer. progress may be nil, in which case every
// call reads the file.
func NewImporter(writer PriceWriter, progress ProgressTracker, opts Options) *Importer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Importer{writer: writer, progress: progress, opts: opts}
}

// Import reads path and writes its valid rows to the price store. Rows with
// missing names, unparseable dates or invalid numbers are skipped and
// counted. A file whose checksum matches the last completed import is not
// read again unless Options.Force is set or the price store is empty.
func (i *Importer) Import(ctx context.Context, path string) (*ImportStats, error) {
	i.mu.Lock()
	if i.running {
		i.mu.Unlock()
		return nil, ErrImportRunning
	}
	i.running = true
	i.stats = &ImportStats{Source: path, StartTime: time.Now()}
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		i.running = false
		i.mu.Unlock()
	}()

	logger := logging.Ctx(ctx).With().Str("source", path).Logger()

	checksum, err := fileChecksum(path)
	if err != nil {
		return i.Stats(), err
	}
	i.update(func(s *ImportStats) { s.Checksum = checksum })

	if prev := i.previous(ctx, path); prev != nil && !i.opts.Force &&
		prev.Completed() && prev.Checksum == checksum && i.storeHasRows(ctx) {
		logger.Info().
			Str("checksum", checksum[:12]).
			Time("imported_at", prev.EndTime).
			Msg("CSV unchanged since last import, skipping")
		out := *prev
		out.Unchanged = true
		return &out, nil
	}

	if err := i.importFile(ctx, path); err != nil {
		return i.Stats(), err
	}

	i.update(func(s *ImportStats) { s.EndTime = time.Now() })
	stats := i.Stats()
	metrics.RecordIngestRows(stats.Imported, stats.Skipped)

	if i.progress != nil {
		if err := i.progress.Save(ctx, stats); err != nil {
			logger.Warn().Err(err).Msg("Failed to save import progress")
		}
	}

	logger.Info().
		Int64("rows", stats.Rows).
		Int64("imported", stats.Imported).
		Int64("skipped", stats.Skipped).
		Dur("duration", stats.Duration()).
		Msg("CSV import completed")
	return stats, nil
}

// Stats returns a snapshot of the current or last import.
func (i *Importer) Stats() *ImportStats {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.stats == nil {
		return nil
	}
	s := *i.stats
	return &s
}

// IsRunning reports whether an import is in progress.
func (i *Importer) IsRunning() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.running
}

func (i *Importer) update(fn func(s *ImportStats)) {
	i.mu.Lock()
	fn(i.stats)
	i.mu.Unlock()
}

// storeHasRows guards the checksum skip: a ledger can outlive the store it
// describes, e.g. an in-memory DuckDB or a deleted database file.
func (i *Importer) storeHasRows(ctx context.Context) bool {
	n, err := i.writer.CountPriceRecords(ctx)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to count stored prices, importing again")
		return false
	}
	if n == 0 {
		logging.Ctx(ctx).Info().Msg("Price store is empty, ignoring import ledger")
		return false
	}
	return true
}

func (i *Importer) previous(ctx context.Context, path string) *ImportStats {
	if i.progress == nil {
		return nil
	}
	prev, err := i.progress.Load(ctx, path)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("source", path).Msg("Failed to load import progress")
		return nil
	}
	return prev
}

func (i *Importer) importFile(ctx context.Context, path string) error {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("source", path).Msg("Error closing CSV file")
		}
	}()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("read csv header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return err
	}

	batch := make([]history.PriceRecord, 0, i.opts.BatchSize)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		switch {
		case errors.As(err, &parseErr):
			i.update(func(s *ImportStats) { s.Rows++ })
			i.skip(ctx, parseErr.StartLine, parseErr)
			continue
		case err != nil:
			return fmt.Errorf("read csv: %w", err)
		}

		line, _ := r.FieldPos(0)
		i.update(func(s *ImportStats) { s.Rows++ })

		rec, err := cols.parse(row)
		if err != nil {
			i.skip(ctx, line, err)
			continue
		}

		batch = append(batch, rec)
		if len(batch) >= i.opts.BatchSize {
			if err := i.flush(ctx, batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return i.flush(ctx, batch)
}

func (i *Importer) skip(ctx context.Context, line int, err error) {
	i.update(func(s *ImportStats) { s.Skipped++ })
	logging.Ctx(ctx).Debug().Int("line", line).Err(err).Msg("Skipping CSV row")
}

func (i *Importer) flush(ctx context.Context, batch []history.PriceRecord) error {
	if len(batch) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := i.writer.UpsertPriceRecords(ctx, batch)
	if err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	i.update(func(s *ImportStats) { s.Imported += int64(n) })
	return nil
}

// columnIndex maps required columns to their positions in a row.
type columnIndex map[string]int

func mapColumns(header []string) (columnIndex, error) {
	cols := make(columnIndex, len(header))
	for pos, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		cols[name] = pos
	}

	var missing []string
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("csv header missing columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func (c columnIndex) field(row []string, name string) (string, error) {
	pos := c[name]
	if pos >= len(row) {
		return "", fmt.Errorf("row has %d fields, %s is column %d", len(row), name, pos+1)
	}
	return strings.TrimSpace(row[pos]), nil
}

// parse converts one CSV row into a validated record.
func (c columnIndex) parse(row []string) (history.PriceRecord, error) {
	var rec history.PriceRecord
	var err error

	if rec.MarketName, err = c.field(row, ColumnMarketName); err != nil {
		return rec, err
	}
	if rec.MarketName == "" {
		return rec, fmt.Errorf("empty %s", ColumnMarketName)
	}
	if rec.Commodity, err = c.field(row, ColumnCommodity); err != nil {
		return rec, err
	}
	if rec.Commodity == "" {
		return rec, fmt.Errorf("empty %s", ColumnCommodity)
	}

	raw, err := c.field(row, ColumnDate)
	if err != nil {
		return rec, err
	}
	if rec.Date, err = history.ParseDate(raw); err != nil {
		return rec, err
	}

	if rec.ModalPrice, err = c.amount(row, ColumnModalPrice); err != nil {
		return rec, err
	}
	if rec.ArrivalsQty, err = c.amount(row, ColumnArrivalsQty); err != nil {
		return rec, err
	}
	return rec, nil
}

func (c columnIndex) amount(row []string, name string) (float64, error) {
	raw, err := c.field(row, name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%s must be a finite non-negative number, got %q", name, raw)
	}
	return v, nil
}

// fileChecksum returns the hex SHA-256 of the file at path.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return "", fmt.Errorf("open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("checksum csv: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
