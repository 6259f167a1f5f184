// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

// Package logging provides the process-wide zerolog logger.
//
// JSON output is the default; console output is available for local runs.
// Request and correlation IDs travel in the context and are attached by Ctx.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Artifact load failed")
//
// Libraries that only speak log/slog (the sutureslog supervisor hooks) get
// an adapter from NewSlogLogger.
//
// Always finish an event with Msg or Send; an unfinished event is dropped.
package logging
