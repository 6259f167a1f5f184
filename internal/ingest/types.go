// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package ingest

import (
	"time"
)

// ImportStats holds statistics about one CSV import.
type ImportStats struct {
	// Source is the path that was imported.
	Source string `json:"source"`

	// Checksum is the hex SHA-256 of the file contents.
	Checksum string `json:"checksum"`

	// Rows is the number of data rows read, excluding the header.
	Rows int64 `json:"rows"`

	// Imported is the number of rows written to the price store.
	Imported int64 `json:"imported"`

	// Skipped is the number of rows rejected by validation.
	Skipped int64 `json:"skipped"`

	// Unchanged is set when the file matched the last completed import
	// and was not read again.
	Unchanged bool `json:"unchanged"`

	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// Completed reports whether the import ran to the end.
func (s *ImportStats) Completed() bool {
	return !s.EndTime.IsZero()
}

// Duration returns the elapsed import time.
func (s *ImportStats) Duration() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}

// RowsPerSecond returns the import rate.
func (s *ImportStats) RowsPerSecond() float64 {
	d := s.Duration().Seconds()
	if d == 0 {
		return 0
	}
	return float64(s.Rows) / d
}
