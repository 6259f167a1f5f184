// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package recommend

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() = %v", err)
	}

	want := []string{"Delhi_Mandi", "Mumbai_Mandi", "Pune_Mandi"}
	if len(cfg.Markets) != len(want) {
		t.Fatalf("markets = %d, want %d", len(cfg.Markets), len(want))
	}
	for i, name := range want {
		if cfg.Markets[i].Name != name {
			t.Errorf("markets[%d] = %q, want %q", i, cfg.Markets[i].Name, name)
		}
	}
	if cfg.Limits.DefaultHorizonDays != 3 || cfg.Limits.DefaultTopK != 3 {
		t.Errorf("limits = %+v", cfg.Limits)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "no markets", mutate: func(c *Config) { c.Markets = nil }, wantErr: true},
		{name: "unnamed market", mutate: func(c *Config) { c.Markets[0].Name = "" }, wantErr: true},
		{name: "duplicate market", mutate: func(c *Config) { c.Markets[1].Name = c.Markets[0].Name }, wantErr: true},
		{name: "bad latitude", mutate: func(c *Config) { c.Markets[0].Latitude = 91 }, wantErr: true},
		{name: "negative fee", mutate: func(c *Config) { c.Profit.MarketFeePercent = -1 }, wantErr: true},
		{name: "zero horizon", mutate: func(c *Config) { c.Limits.DefaultHorizonDays = 0 }, wantErr: true},
		{name: "max horizon below default", mutate: func(c *Config) { c.Limits.MaxHorizonDays = 2 }, wantErr: true},
		{name: "max top_k below default", mutate: func(c *Config) { c.Limits.MaxTopK = 1 }, wantErr: true},
		{name: "cache ttl", mutate: func(c *Config) { c.Cache.TTL = 0 }, wantErr: true},
		{name: "disabled cache ignores ttl", mutate: func(c *Config) {
			c.Cache.Enabled = false
			c.Cache.TTL = 0
		}},
		{name: "cache entries", mutate: func(c *Config) { c.Cache.MaxEntries = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.Markets[0].Name = "changed"
	clone.Cache.TTL = time.Second

	if cfg.Markets[0].Name != "Delhi_Mandi" {
		t.Error("Clone() shares the market slice")
	}
	if cfg.Cache.TTL != 10*time.Minute {
		t.Error("Clone() shares cache config")
	}
}

func TestRequest_CacheKey(t *testing.T) {
	a := Request{FarmerLat: 18.5, FarmerLon: 73.8, Commodity: "Onion", QuantityTonnes: 2, SelectedDate: "2024-01-15", HorizonDays: 3, TopK: 3}
	b := a
	b.RequestID = "different"
	if a.cacheKey() != b.cacheKey() {
		t.Error("request ID must not affect the cache key")
	}

	variants := []func(r *Request){
		func(r *Request) { r.FarmerLat = 18.51 },
		func(r *Request) { r.Commodity = "Tomato" },
		func(r *Request) { r.QuantityTonnes = 2.5 },
		func(r *Request) { r.SelectedDate = "2024-01-16" },
		func(r *Request) { r.HorizonDays = 4 },
		func(r *Request) { r.TopK = 5 },
		func(r *Request) { r.All = true },
		func(r *Request) { r.IncludeBreakdown = true },
	}
	for i, mutate := range variants {
		c := a
		mutate(&c)
		if c.cacheKey() == a.cacheKey() {
			t.Errorf("variant %d shares the cache key", i)
		}
	}
}
