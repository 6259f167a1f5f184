// Crop Market Recommender - Profit-Ranked Market Selection for Farmers
// Copyright 2026 mohan-p-hp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mohan-p-hp/market-recomender

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohan-p-hp/market-recomender/internal/api"
	"github.com/mohan-p-hp/market-recomender/internal/config"
	"github.com/mohan-p-hp/market-recomender/internal/database"
	"github.com/mohan-p-hp/market-recomender/internal/logging"
	"github.com/mohan-p-hp/market-recomender/internal/supervisor"
	"github.com/mohan-p-hp/market-recomender/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.LogConfig())

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("model_path", cfg.Recommend.ModelPath).
		Int("markets", len(cfg.Markets)).
		Msg("Starting Crop Market Recommender")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	if err := runStartupImport(ctx, cfg, db); err != nil {
		return err
	}

	table, err := loadFeatureTable(ctx, db)
	if err != nil {
		return err
	}

	rec, err := initRecommend(cfg, table, logging.WithComponent("recommend"))
	if err != nil {
		return err
	}

	handler, err := api.NewHandler(api.HandlerDeps{
		Engine:         rec.Engine,
		Features:       table,
		Models:         rec.Registry,
		DB:             db,
		RequestTimeout: cfg.Server.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("create API handler: %w", err)
	}

	mwCfg := api.ChiMiddlewareConfigFromSecurity(&cfg.Security)
	if mwCfg.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (security.rate_limit_disabled=true)")
	}
	router := api.NewRouter(handler, api.NewChiMiddleware(mwCfg))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Bridges zerolog to slog for sutureslog.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(rec.Warmup)
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// The channel yields exactly one result when the tree stops.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
	return nil
}
