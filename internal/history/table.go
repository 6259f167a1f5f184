// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package history

import (
	"sort"
)

// FeatureTable is the immutable set of feature rows built at startup.
// It is safe for concurrent use without locking.
type FeatureTable struct {
	rows   []FeatureRow
	latest map[SeriesKey]int
}

// NewFeatureTable builds the feature table for a price history.
func NewFeatureTable(h *PriceHistory) *FeatureTable {
	return newFeatureTable(h.Features())
}

func newFeatureTable(rows []FeatureRow) *FeatureTable {
	t := &FeatureTable{
		rows:   rows,
		latest: make(map[SeriesKey]int),
	}
	for i := range rows {
		key := SeriesKey{Market: rows[i].MarketName, Commodity: rows[i].Commodity}
		if cur, ok := t.latest[key]; !ok || rows[i].Date.After(rows[cur].Date) {
			t.latest[key] = i
		}
	}
	return t
}

// Len returns the number of feature rows.
func (t *FeatureTable) Len() int {
	return len(t.rows)
}

// Rows returns a copy of all feature rows.
func (t *FeatureTable) Rows() []FeatureRow {
	out := make([]FeatureRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Latest returns the most recent feature row for a market and commodity.
func (t *FeatureTable) Latest(market, commodity string) (FeatureRow, bool) {
	i, ok := t.latest[SeriesKey{Market: market, Commodity: commodity}]
	if !ok {
		return FeatureRow{}, false
	}
	return t.rows[i], true
}

// Commodities returns the distinct commodities with at least one row, sorted.
func (t *FeatureTable) Commodities() []string {
	seen := make(map[string]struct{})
	for key := range t.latest {
		seen[key.Commodity] = struct{}{}
	}
	return sortedKeys(seen)
}

// Markets returns the distinct markets with at least one row, sorted.
func (t *FeatureTable) Markets() []string {
	seen := make(map[string]struct{})
	for key := range t.latest {
		seen[key.Market] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
