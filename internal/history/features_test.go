// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package history

import (
	"reflect"
	"testing"
	"time"
)

var baseDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// makeSeries builds one record per day starting at baseDate.
func makeSeries(market, commodity string, prices []float64) []PriceRecord {
	records := make([]PriceRecord, len(prices))
	for i, p := range prices {
		records[i] = PriceRecord{
			MarketName:  market,
			Commodity:   commodity,
			Date:        baseDate.AddDate(0, 0, i),
			ModalPrice:  p,
			ArrivalsQty: float64(i + 1),
		}
	}
	return records
}

func steps(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64((i + 1) * 10)
	}
	return out
}

func TestBuildFeatures_MinimumHistory(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		wantRows int
	}{
		{name: "empty", count: 0, wantRows: 0},
		{name: "seven records", count: 7, wantRows: 0},
		{name: "eight records", count: 8, wantRows: 1},
		{name: "ten records", count: 10, wantRows: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := BuildFeatures(makeSeries("Delhi_Mandi", "Tomato", steps(tt.count)))
			if len(rows) != tt.wantRows {
				t.Errorf("len(rows) = %d, want %d", len(rows), tt.wantRows)
			}
		})
	}
}

func TestBuildFeatures_LagValues(t *testing.T) {
	rows := BuildFeatures(makeSeries("Delhi_Mandi", "Tomato", steps(10)))
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}

	tests := []struct {
		idx          int
		date         time.Time
		yesterday    float64
		lastWeek     float64
		avg          float64
		arrivalsPrev float64
	}{
		{idx: 0, date: baseDate.AddDate(0, 0, 7), yesterday: 70, lastWeek: 10, avg: 40, arrivalsPrev: 7},
		{idx: 1, date: baseDate.AddDate(0, 0, 8), yesterday: 80, lastWeek: 20, avg: 50, arrivalsPrev: 8},
		{idx: 2, date: baseDate.AddDate(0, 0, 9), yesterday: 90, lastWeek: 30, avg: 60, arrivalsPrev: 9},
	}

	for _, tt := range tests {
		row := rows[tt.idx]
		if !row.Date.Equal(tt.date) {
			t.Errorf("rows[%d].Date = %v, want %v", tt.idx, row.Date, tt.date)
		}
		if row.PriceYesterday != tt.yesterday {
			t.Errorf("rows[%d].PriceYesterday = %v, want %v", tt.idx, row.PriceYesterday, tt.yesterday)
		}
		if row.PriceLastWeek != tt.lastWeek {
			t.Errorf("rows[%d].PriceLastWeek = %v, want %v", tt.idx, row.PriceLastWeek, tt.lastWeek)
		}
		if row.PriceAvg7Days != tt.avg {
			t.Errorf("rows[%d].PriceAvg7Days = %v, want %v", tt.idx, row.PriceAvg7Days, tt.avg)
		}
		if row.ArrivalsYesterday != tt.arrivalsPrev {
			t.Errorf("rows[%d].ArrivalsYesterday = %v, want %v", tt.idx, row.ArrivalsYesterday, tt.arrivalsPrev)
		}
	}
}

func TestBuildFeatures_NoLeakage(t *testing.T) {
	prices := []float64{12, 15, 11, 19, 14, 13, 18, 22, 17, 16, 21, 25, 20}
	records := makeSeries("Pune_Mandi", "Onion", prices)
	rows := BuildFeatures(records)

	for _, row := range rows {
		var prior []PriceRecord
		for _, rec := range records {
			if rec.Date.Before(row.Date) {
				prior = append(prior, rec)
			}
		}
		if len(prior) < LagWindow {
			t.Fatalf("row %v emitted with only %d prior records", row.Date, len(prior))
		}

		window := prior[len(prior)-LagWindow:]
		var sum float64
		for _, rec := range window {
			sum += rec.ModalPrice
		}

		if row.PriceYesterday != prior[len(prior)-1].ModalPrice {
			t.Errorf("%v: PriceYesterday = %v, want %v", row.Date, row.PriceYesterday, prior[len(prior)-1].ModalPrice)
		}
		if row.PriceLastWeek != window[0].ModalPrice {
			t.Errorf("%v: PriceLastWeek = %v, want %v", row.Date, row.PriceLastWeek, window[0].ModalPrice)
		}
		if row.PriceAvg7Days != sum/LagWindow {
			t.Errorf("%v: PriceAvg7Days = %v, want %v", row.Date, row.PriceAvg7Days, sum/LagWindow)
		}
	}
}

func TestBuildFeatures_InputOrderIndependent(t *testing.T) {
	records := append(
		makeSeries("Mumbai_Mandi", "Tomato", steps(9)),
		makeSeries("Delhi_Mandi", "Tomato", steps(11))...,
	)

	reversed := make([]PriceRecord, len(records))
	for i := range records {
		reversed[len(records)-1-i] = records[i]
	}

	want := BuildFeatures(records)
	got := BuildFeatures(reversed)
	if !reflect.DeepEqual(got, want) {
		t.Error("BuildFeatures() differs when input order changes")
	}

	if len(want) != 2+4 {
		t.Fatalf("len(rows) = %d, want 6", len(want))
	}
	if want[0].MarketName != "Delhi_Mandi" {
		t.Errorf("first row market = %s, want Delhi_Mandi", want[0].MarketName)
	}
}

func TestBuildFeatures_GroupsAreIndependent(t *testing.T) {
	records := append(
		makeSeries("Delhi_Mandi", "Tomato", steps(8)),
		makeSeries("Delhi_Mandi", "Onion", steps(5))...,
	)

	rows := BuildFeatures(records)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if rows[0].Commodity != "Tomato" {
		t.Errorf("Commodity = %s, want Tomato", rows[0].Commodity)
	}
}

func TestNewPriceHistory_DuplicateDatesLastWins(t *testing.T) {
	records := makeSeries("Delhi_Mandi", "Tomato", steps(3))
	dup := records[1]
	dup.ModalPrice = 999
	records = append(records, dup)

	h := NewPriceHistory(records)
	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}

	series := h.Series("Delhi_Mandi", "Tomato")
	if series[1].ModalPrice != 999 {
		t.Errorf("series[1].ModalPrice = %v, want 999", series[1].ModalPrice)
	}
}

func TestNewPriceHistory_TruncatesClock(t *testing.T) {
	rec := PriceRecord{
		MarketName: "Delhi_Mandi",
		Commodity:  "Tomato",
		Date:       time.Date(2024, time.March, 5, 17, 30, 0, 0, time.UTC),
		ModalPrice: 10,
	}
	h := NewPriceHistory([]PriceRecord{rec})

	got := h.Records()[0].Date
	want := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("Date = %v, want %v", got, want)
	}
}

func TestCalendarFor(t *testing.T) {
	tests := []struct {
		date        string
		wantDay     int
		wantMonth   int
		wantWeekend int
	}{
		{date: "2024-01-01", wantDay: 0, wantMonth: 1, wantWeekend: 0}, // Monday
		{date: "2024-01-05", wantDay: 4, wantMonth: 1, wantWeekend: 0}, // Friday
		{date: "2024-01-06", wantDay: 5, wantMonth: 1, wantWeekend: 1}, // Saturday
		{date: "2024-01-07", wantDay: 6, wantMonth: 1, wantWeekend: 1}, // Sunday
		{date: "2024-12-31", wantDay: 1, wantMonth: 12, wantWeekend: 0},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := ParseDate(tt.date)
			if err != nil {
				t.Fatalf("ParseDate() error = %v", err)
			}
			got := CalendarFor(d)
			if got.DayOfWeek != tt.wantDay {
				t.Errorf("DayOfWeek = %d, want %d", got.DayOfWeek, tt.wantDay)
			}
			if got.Month != tt.wantMonth {
				t.Errorf("Month = %d, want %d", got.Month, tt.wantMonth)
			}
			if got.IsWeekend != tt.wantWeekend {
				t.Errorf("IsWeekend = %d, want %d", got.IsWeekend, tt.wantWeekend)
			}
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "01/02/2024", "yesterday"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) expected error", s)
		}
	}
}
