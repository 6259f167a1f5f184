// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package history

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for price records and requests.
const DateLayout = "2006-01-02"

// PriceRecord is a single daily observation for one commodity at one market.
type PriceRecord struct {
	// MarketName identifies the mandi (e.g., "Delhi_Mandi").
	MarketName string `json:"market_name"`

	// Commodity is the crop name (e.g., "Tomato").
	Commodity string `json:"commodity"`

	// Date is the observation date, normalized to UTC midnight.
	Date time.Time `json:"date"`

	// ModalPrice is the most frequently transacted price, per quintal.
	ModalPrice float64 `json:"modal_price"`

	// ArrivalsQty is the volume brought to market on Date.
	ArrivalsQty float64 `json:"arrivals_qty"`
}

// SeriesKey identifies one (market, commodity) time series.
type SeriesKey struct {
	Market    string
	Commodity string
}

// String implements fmt.Stringer.
func (k SeriesKey) String() string {
	return k.Market + "/" + k.Commodity
}

// Key returns the series this record belongs to.
func (r PriceRecord) Key() SeriesKey {
	return SeriesKey{Market: r.MarketName, Commodity: r.Commodity}
}

// ParseDate parses a YYYY-MM-DD string into a UTC calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// TruncateDate drops the clock component, keeping the calendar date in UTC.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PriceHistory is an immutable, time-ordered collection of price records.
// Records are ordered by market, commodity and date. Within a series each
// date appears at most once.
type PriceHistory struct {
	records []PriceRecord
	series  map[SeriesKey][]PriceRecord
	keys    []SeriesKey
}

// NewPriceHistory builds a PriceHistory from records in any order.
// The input slice is not modified. When a (market, commodity, date) key
// repeats, the last occurrence in the input wins.
func NewPriceHistory(records []PriceRecord) *PriceHistory {
	type dayKey struct {
		series SeriesKey
		day    time.Time
	}

	latest := make(map[dayKey]int, len(records))
	for i := range records {
		latest[dayKey{records[i].Key(), TruncateDate(records[i].Date)}] = i
	}

	kept := make([]PriceRecord, 0, len(latest))
	for i := range records {
		rec := records[i]
		rec.Date = TruncateDate(rec.Date)
		if latest[dayKey{rec.Key(), rec.Date}] != i {
			continue
		}
		kept = append(kept, rec)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		a, b := kept[i], kept[j]
		if a.MarketName != b.MarketName {
			return a.MarketName < b.MarketName
		}
		if a.Commodity != b.Commodity {
			return a.Commodity < b.Commodity
		}
		return a.Date.Before(b.Date)
	})

	h := &PriceHistory{
		records: kept,
		series:  make(map[SeriesKey][]PriceRecord),
	}

	// kept is sorted, so each series is a contiguous sub-slice.
	start := 0
	for i := 1; i <= len(kept); i++ {
		if i < len(kept) && kept[i].Key() == kept[start].Key() {
			continue
		}
		key := kept[start].Key()
		h.series[key] = kept[start:i:i]
		h.keys = append(h.keys, key)
		start = i
	}

	return h
}

// Len returns the number of records.
func (h *PriceHistory) Len() int {
	return len(h.records)
}

// Records returns a copy of all records in (market, commodity, date) order.
func (h *PriceHistory) Records() []PriceRecord {
	out := make([]PriceRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Keys returns the series keys in sorted order.
func (h *PriceHistory) Keys() []SeriesKey {
	out := make([]SeriesKey, len(h.keys))
	copy(out, h.keys)
	return out
}

// Series returns a copy of the date-ordered records for one series.
func (h *PriceHistory) Series(market, commodity string) []PriceRecord {
	s := h.series[SeriesKey{Market: market, Commodity: commodity}]
	out := make([]PriceRecord, len(s))
	copy(out, s)
	return out
}
