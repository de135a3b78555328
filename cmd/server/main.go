// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package main is the entry point for the Echotrace server.
//
// Echotrace ingests download events posted by the browser extension,
// persists them in DuckDB with a permanent fingerprint uniqueness
// guarantee, and pushes accepted events to dashboard clients over SSE
// and WebSocket.
//
// The server initializes components in the following order:
//
//  1. Configuration: koanf v2 layers (defaults, config.yaml, env)
//  2. Database: embedded DuckDB with the webhooks schema and unique
//     fingerprint index
//  3. Fanout hub: the live-stream broadcast loop
//  4. Supervisor tree: suture-managed hub, sweeper, and HTTP server
//
// DATABASE_PATH is required; the server refuses to start without it.
// Shutdown on SIGINT/SIGTERM drains in-flight requests within
// SHUTDOWN_TIMEOUT and closes all stream subscribers.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/echotrace/echotrace/internal/api"
	"github.com/echotrace/echotrace/internal/config"
	"github.com/echotrace/echotrace/internal/database"
	"github.com/echotrace/echotrace/internal/fanout"
	"github.com/echotrace/echotrace/internal/ingest"
	"github.com/echotrace/echotrace/internal/logging"
	"github.com/echotrace/echotrace/internal/supervisor"
	"github.com/echotrace/echotrace/internal/supervisor/services"
	"github.com/echotrace/echotrace/internal/sweep"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Strs("fingerprint_fields", cfg.Webhook.FingerprintFields).
		Msg("Starting Echotrace")

	db, err := database.New(&cfg.Database, cfg.Webhook.FingerprintFields)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog supervisor events
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	hub := fanout.NewHub()
	processor := ingest.New(db, hub, cfg.Webhook.MaxBatchItems)
	handlers := api.NewHandlers(db, hub, processor, cfg, version)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(handlers, cfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	tree.AddMessagingService(services.NewFanoutHubService(hub))
	if cfg.Sweep.Enabled {
		tree.AddMaintenanceService(sweep.New(db, hub, cfg.Sweep))
		logging.Info().
			Dur("interval", cfg.Sweep.Interval).
			Bool("run_on_start", cfg.Sweep.RunOnStart).
			Msg("Deduplication sweeper added to supervisor tree")
	} else {
		logging.Info().Msg("Deduplication sweeper disabled (SWEEP_ENABLED=false)")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
