// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package config

import (
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig().Validate() = %v", err)
	}
	if cfg.Server.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.Server.RequestTimeout)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if len(cfg.Markets) != 3 {
		t.Errorf("Markets = %d, want 3", len(cfg.Markets))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "port zero", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "request timeout", mutate: func(c *Config) { c.Server.RequestTimeout = 0 }, wantErr: true},
		{name: "database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "import without csv", mutate: func(c *Config) { c.Data.CSVPath = "" }, wantErr: true},
		{name: "no import without csv", mutate: func(c *Config) {
			c.Data.CSVPath = ""
			c.Data.ImportOnStartup = false
		}},
		{name: "batch size", mutate: func(c *Config) { c.Data.BatchSize = 0 }, wantErr: true},
		{name: "model path", mutate: func(c *Config) { c.Recommend.ModelPath = "" }, wantErr: true},
		{name: "blank warm commodity", mutate: func(c *Config) { c.Recommend.WarmCommodities = []string{" "} }, wantErr: true},
		{name: "no markets", mutate: func(c *Config) { c.Markets = nil }, wantErr: true},
		{name: "fee out of range", mutate: func(c *Config) { c.Profit.MarketFeePercent = 150 }, wantErr: true},
		{name: "max top_k below default", mutate: func(c *Config) { c.Recommend.Limits.MaxTopK = 1 }, wantErr: true},
		{name: "no cors origins", mutate: func(c *Config) { c.Security.CORSOrigins = nil }, wantErr: true},
		{name: "rate limit", mutate: func(c *Config) { c.Security.RateLimitReqs = 0 }, wantErr: true},
		{name: "rate limit disabled", mutate: func(c *Config) {
			c.Security.RateLimitReqs = 0
			c.Security.RateLimitDisabled = true
		}},
		{name: "log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommend.Limits.DefaultTopK = 5
	cfg.Profit.MarketFeePercent = 2

	ec := cfg.EngineConfig()
	if ec.Limits.DefaultTopK != 5 || ec.Profit.MarketFeePercent != 2 {
		t.Errorf("EngineConfig() = %+v", ec)
	}

	ec.Markets[0].Name = "changed"
	if cfg.Markets[0].Name == "changed" {
		t.Error("EngineConfig() shares the market slice")
	}
}

func TestRegistryConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommend.LoadTimeout = 5 * time.Second
	if got := cfg.RegistryConfig().LoadTimeout; got != 5*time.Second {
		t.Errorf("LoadTimeout = %v, want 5s", got)
	}
}

func TestLogConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "console"

	lc := cfg.LogConfig()
	if lc.Level != "debug" || lc.Format != "console" || lc.Output == nil {
		t.Errorf("LogConfig() = %+v", lc)
	}
}
