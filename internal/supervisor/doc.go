// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

/*
Package supervisor builds the suture v4 supervision tree for the server.

	market-recommender (root)
	├── data-layer
	│   └── artifact-warmup
	└── api-layer
	    └── http-server

Supervisor events (restarts, backoff, panics) are logged through
sutureslog using the zerolog-backed slog handler from internal/logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(services.NewWarmupService(registry, engine, warmCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, addr, timeout, logger))
	err = tree.Serve(ctx)
*/
package supervisor
