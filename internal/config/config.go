// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package config

import (
	"time"

	"github.com/mohan-p-hp/market-recomender/internal/logging"
	"github.com/mohan-p-hp/market-recomender/internal/profit"
	"github.com/mohan-p-hp/market-recomender/internal/recommend"
	"github.com/mohan-p-hp/market-recomender/internal/recommend/predict"
)

// Config holds all application configuration.
// Load it with LoadWithKoanf, which layers defaults, an optional YAML file
// and environment variables.
type Config struct {
	Server    ServerConfig       `koanf:"server"`
	Database  DatabaseConfig     `koanf:"database"`
	Data      DataConfig         `koanf:"data"`
	Recommend RecommendConfig    `koanf:"recommend"`
	Profit    profit.Model       `koanf:"profit"`
	Markets   []recommend.Market `koanf:"markets"`
	Security  SecurityConfig     `koanf:"security"`
	Logging   LoggingConfig      `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// RequestTimeout bounds a single recommendation request.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig holds DuckDB settings for the price store.
type DatabaseConfig struct {
	// Path is the database file; ":memory:" keeps everything in RAM.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// DataConfig controls CSV ingestion at startup.
type DataConfig struct {
	// CSVPath points at market_prices.csv. Empty disables the import.
	CSVPath string `koanf:"csv_path"`

	// ImportOnStartup imports CSVPath before building features.
	ImportOnStartup bool `koanf:"import_on_startup"`

	// ProgressPath is the badger directory recording completed imports.
	// Empty keeps progress in memory only.
	ProgressPath string `koanf:"progress_path"`

	// BatchSize is the number of rows written per transaction.
	BatchSize int `koanf:"batch_size"`
}

// RecommendConfig holds engine and predictor settings.
type RecommendConfig struct {
	// ModelPath is the artifact store directory.
	ModelPath string `koanf:"model_path"`

	// WarmCommodities are loaded before the API starts serving.
	WarmCommodities []string `koanf:"warm_commodities"`

	// StatsInterval is how often registry and cache gauges are refreshed.
	StatsInterval time.Duration `koanf:"stats_interval"`

	// LoadTimeout bounds a single artifact read.
	LoadTimeout time.Duration `koanf:"load_timeout"`

	Limits recommend.LimitsConfig `koanf:"limits"`
	Cache  recommend.CacheConfig  `koanf:"cache"`
}

// SecurityConfig holds CORS and rate limiting.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EngineConfig assembles the recommendation engine configuration.
func (c *Config) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Markets: append([]recommend.Market(nil), c.Markets...),
		Profit:  c.Profit,
		Limits:  c.Recommend.Limits,
		Cache:   c.Recommend.Cache,
	}
}

// RegistryConfig assembles the predictor registry configuration.
func (c *Config) RegistryConfig() predict.RegistryConfig {
	cfg := predict.DefaultRegistryConfig()
	if c.Recommend.LoadTimeout > 0 {
		cfg.LoadTimeout = c.Recommend.LoadTimeout
	}
	return cfg
}

// LogConfig converts the logging section for logging.Init.
func (c *Config) LogConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
