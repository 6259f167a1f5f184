// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package config loads application configuration with koanf.

# Sources

Values are layered, later sources winning:

  - struct defaults (defaultConfig)
  - a YAML file from CONFIG_PATH or DefaultConfigPaths
  - environment variables listed in envMappings

Markets are configured in YAML only; everything else can also be set from
the environment. Comma-separated values are accepted for CORS_ORIGINS and
WARM_COMMODITIES.

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8000)
  - REQUEST_TIMEOUT: per recommendation request (default: 10s)
  - READ_TIMEOUT, WRITE_TIMEOUT, IDLE_TIMEOUT, SHUTDOWN_TIMEOUT

Price store and ingestion:
  - DUCKDB_PATH (default: data/prices.duckdb), DUCKDB_MAX_MEMORY, DUCKDB_THREADS
  - DATA_CSV_PATH (default: data/market_prices.csv)
  - DATA_IMPORT_ON_STARTUP (default: true)
  - DATA_PROGRESS_PATH: badger directory for import progress
  - DATA_BATCH_SIZE (default: 1000)

Recommendation:
  - MODEL_PATH: artifact store directory (default: models)
  - MODEL_LOAD_TIMEOUT (default: 30s)
  - WARM_COMMODITIES: artifacts loaded at startup
  - RECOMMEND_DEFAULT_HORIZON, RECOMMEND_MAX_HORIZON (default: 3, 14)
  - RECOMMEND_DEFAULT_TOP_K, RECOMMEND_MAX_TOP_K (default: 3, 50)
  - RECOMMEND_CACHE_ENABLED, RECOMMEND_CACHE_TTL, RECOMMEND_CACHE_MAX_ENTRIES

Cost model:
  - PROFIT_TRANSPORT_PER_KM_TONNE (default: 2)
  - PROFIT_TRANSPORT_FIXED (default: 500)
  - PROFIT_MARKET_FEE_PERCENT (default: 1.5)
  - PROFIT_OTHER_PER_TONNE (default: 200)

Security:
  - CORS_ORIGINS (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW (default: 100 per 1m)
  - DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	engine, err := recommend.NewEngine(cfg.EngineConfig(), table, registry, logger)
*/
package config
