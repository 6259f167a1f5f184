// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

// Package profit estimates the revenue, costs and net profit of selling a
// crop lot at a market.
//
// All amounts are in rupees. Prices are per kilogram, quantities in tonnes
// and distances in kilometres. Negative net profit is a valid outcome.
package profit

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// KgPerTonne converts tonnes to kilograms.
const KgPerTonne = 1000

// Model holds the cost parameters. The zero value is not useful; start
// from DefaultModel.
type Model struct {
	// TransportPerKmTonne is charged per kilometre per tonne.
	// Default: 2.
	TransportPerKmTonne float64 `json:"transport_per_km_tonne" koanf:"transport_per_km_tonne"`

	// TransportFixed is the flat charge per trip.
	// Default: 500.
	TransportFixed float64 `json:"transport_fixed" koanf:"transport_fixed"`

	// MarketFeePercent is the mandi fee as a percentage of revenue.
	// Default: 1.5.
	MarketFeePercent float64 `json:"market_fee_percent" koanf:"market_fee_percent"`

	// OtherPerTonne covers loading, packing and labour.
	// Default: 200.
	OtherPerTonne float64 `json:"other_per_tonne" koanf:"other_per_tonne"`
}

// DefaultModel returns the standard cost model.
func DefaultModel() Model {
	return Model{
		TransportPerKmTonne: 2,
		TransportFixed:      500,
		MarketFeePercent:    1.5,
		OtherPerTonne:       200,
	}
}

// Validate checks that the parameters are finite and non-negative.
func (m Model) Validate() error {
	params := []struct {
		name  string
		value float64
	}{
		{"transport_per_km_tonne", m.TransportPerKmTonne},
		{"transport_fixed", m.TransportFixed},
		{"market_fee_percent", m.MarketFeePercent},
		{"other_per_tonne", m.OtherPerTonne},
	}
	for _, p := range params {
		if math.IsNaN(p.value) || math.IsInf(p.value, 0) || p.value < 0 {
			return fmt.Errorf("profit.%s must be a non-negative number, got %v", p.name, p.value)
		}
	}
	if m.MarketFeePercent >= 100 {
		return fmt.Errorf("profit.market_fee_percent must be below 100, got %v", m.MarketFeePercent)
	}
	return nil
}

// Breakdown is the itemized result of an estimate.
type Breakdown struct {
	Revenue       float64 `json:"revenue"`
	TransportCost float64 `json:"transport_cost"`
	MarketFees    float64 `json:"market_fees"`
	OtherCosts    float64 `json:"other_costs"`
	TotalCosts    float64 `json:"total_costs"`
	NetProfit     float64 `json:"net_profit"`
}

// Estimate computes revenue, costs and net profit for selling quantityTonnes
// at pricePerKg after hauling it distanceKM.
func (m Model) Estimate(pricePerKg, quantityTonnes, distanceKM float64) Breakdown {
	revenue := pricePerKg * quantityTonnes * KgPerTonne
	transport := distanceKM*m.TransportPerKmTonne*quantityTonnes + m.TransportFixed
	fees := revenue * (m.MarketFeePercent / 100)
	other := m.OtherPerTonne * quantityTonnes
	total := transport + fees + other

	return Breakdown{
		Revenue:       revenue,
		TransportCost: transport,
		MarketFees:    fees,
		OtherCosts:    other,
		TotalCosts:    total,
		NetProfit:     revenue - total,
	}
}

// exactExponent is small enough that NewFromFloatWithExponent keeps every
// binary digit of a float64.
const exactExponent = -1074

// Round rounds v to the given number of decimal places, half to even, on the
// exact binary value of v. 2.675 is stored just below the midpoint and
// becomes 2.67; 0.125 is an exact midpoint and becomes 0.12.
func Round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return decimal.NewFromFloatWithExponent(v, exactExponent).RoundBank(places).InexactFloat64()
}
