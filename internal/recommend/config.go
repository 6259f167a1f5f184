// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package recommend

import (
	"fmt"
	"time"

	"github.com/mohan-p-hp/market-recomender/internal/geo"
	"github.com/mohan-p-hp/market-recomender/internal/profit"
)

// Market is a physical selling location.
type Market struct {
	Name      string  `json:"name" koanf:"name"`
	Latitude  float64 `json:"latitude" koanf:"latitude"`
	Longitude float64 `json:"longitude" koanf:"longitude"`
}

// Point returns the market's coordinates.
func (m Market) Point() geo.Point {
	return geo.Point{Lat: m.Latitude, Lon: m.Longitude}
}

// DefaultMarkets returns the built-in market list.
func DefaultMarkets() []Market {
	return []Market{
		{Name: "Delhi_Mandi", Latitude: 28.6, Longitude: 77.2},
		{Name: "Mumbai_Mandi", Latitude: 19.0, Longitude: 72.8},
		{Name: "Pune_Mandi", Latitude: 18.5, Longitude: 73.8},
	}
}

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Markets are evaluated in this order; ties in net profit keep it.
	Markets []Market `json:"markets"`

	// Profit holds the cost model parameters.
	Profit profit.Model `json:"profit"`

	// Limits contains request defaults and caps.
	Limits LimitsConfig `json:"limits"`

	// Cache contains response caching parameters.
	Cache CacheConfig `json:"cache"`
}

// LimitsConfig contains request defaults and caps.
type LimitsConfig struct {
	// DefaultHorizonDays is used when a request omits horizon_days.
	// Default: 3.
	DefaultHorizonDays int `json:"default_horizon_days" koanf:"default_horizon_days"`

	// MaxHorizonDays caps horizon_days.
	// Default: 14.
	MaxHorizonDays int `json:"max_horizon_days" koanf:"max_horizon_days"`

	// DefaultTopK is used when a request omits top_k.
	// Default: 3.
	DefaultTopK int `json:"default_top_k" koanf:"default_top_k"`

	// MaxTopK caps top_k.
	// Default: 50.
	MaxTopK int `json:"max_top_k" koanf:"max_top_k"`
}

// CacheConfig contains response caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled" koanf:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 10m.
	TTL time.Duration `json:"ttl" koanf:"ttl"`

	// MaxEntries is the maximum number of cached responses.
	// Default: 1024.
	MaxEntries int `json:"max_entries" koanf:"max_entries"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Markets: DefaultMarkets(),
		Profit:  profit.DefaultModel(),
		Limits: LimitsConfig{
			DefaultHorizonDays: 3,
			MaxHorizonDays:     14,
			DefaultTopK:        3,
			MaxTopK:            50,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        10 * time.Minute,
			MaxEntries: 1024,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if len(c.Markets) == 0 {
		return fmt.Errorf("markets must not be empty")
	}
	seen := make(map[string]struct{}, len(c.Markets))
	for i, m := range c.Markets {
		if m.Name == "" {
			return fmt.Errorf("markets[%d].name must not be empty", i)
		}
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("markets[%d].name %q is duplicated", i, m.Name)
		}
		seen[m.Name] = struct{}{}
		if !m.Point().Valid() {
			return fmt.Errorf("markets[%d] %q has invalid coordinates (%v, %v)", i, m.Name, m.Latitude, m.Longitude)
		}
	}

	if err := c.Profit.Validate(); err != nil {
		return fmt.Errorf("profit: %w", err)
	}

	if c.Limits.DefaultHorizonDays < 1 {
		return fmt.Errorf("limits.default_horizon_days must be positive, got %d", c.Limits.DefaultHorizonDays)
	}
	if c.Limits.MaxHorizonDays < c.Limits.DefaultHorizonDays {
		return fmt.Errorf("limits.max_horizon_days must be >= limits.default_horizon_days, got %d < %d",
			c.Limits.MaxHorizonDays, c.Limits.DefaultHorizonDays)
	}
	if c.Limits.DefaultTopK < 1 {
		return fmt.Errorf("limits.default_top_k must be positive, got %d", c.Limits.DefaultTopK)
	}
	if c.Limits.MaxTopK < c.Limits.DefaultTopK {
		return fmt.Errorf("limits.max_top_k must be >= limits.default_top_k, got %d < %d",
			c.Limits.MaxTopK, c.Limits.DefaultTopK)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	out.Markets = append([]Market(nil), c.Markets...)
	return &out
}
