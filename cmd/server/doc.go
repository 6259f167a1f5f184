// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package main is the entry point for the Crop Market Recommender server.

The server answers "where and when should I sell my crop?" by predicting
modal prices for each configured market over the next few days and ranking
every (date, market) pair by estimated net profit after transport, market
fees and handling costs.

# Startup Sequence

	1. Configuration: defaults, config.yaml and environment (Koanf v2)
	2. Logging: zerolog with JSON or console output
	3. Price store: DuckDB
	4. CSV import: market_prices.csv, skipped when the checksum matches the
	   last completed import (progress kept in BadgerDB)
	5. Feature table: lag and rolling features per (market, commodity)
	6. Artifact store and predictor registry
	7. Recommendation engine
	8. HTTP API: Chi router with CORS, rate limiting and Prometheus metrics

# Supervision

Long-running components run under a Suture v4 tree:

	RootSupervisor ("market-recommender")
	├── DataSupervisor ("data-layer")
	│   └── artifact-warmup
	└── APISupervisor ("api-layer")
	    └── http-server

# Configuration

Settings are read from config.yaml (or CONFIG_PATH) and environment
variables such as HTTP_PORT, DUCKDB_PATH, DATA_CSV_PATH and MODEL_PATH.
Markets are configured in the YAML file only.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within server.shutdown_timeout before the database
is closed.

# Example

	export DATA_CSV_PATH=./data/market_prices.csv
	export MODEL_PATH=./models
	./market-recommender

	curl -X POST localhost:8000/recommend \
	  -H 'Content-Type: application/json' \
	  -d '{"farmer_lat":12.97,"farmer_lon":77.59,"quantity_tonnes":2,"commodity":"Tomato","selected_date":"2025-06-01"}'
*/
package main
