// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package main imports a Chrome Web Store "Weekly users over time" CSV
// export into the active-user series.
//
// Usage:
//
//	DATABASE_PATH=/data/echotrace.db import-active-users path/to/export.csv
//
// The import is idempotent: rows are upserted by date, so re-running
// with an updated export refreshes existing days.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/echotrace/echotrace/internal/config"
	"github.com/echotrace/echotrace/internal/database"
	"github.com/echotrace/echotrace/internal/importer"
	"github.com/echotrace/echotrace/internal/logging"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: import-active-users path/to/export.csv")
		os.Exit(1)
	}
	csvPath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: "console",
	})

	db, err := database.New(&cfg.Database, cfg.Webhook.FingerprintFields)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx := context.Background()
	result, err := importer.ImportFile(ctx, db, csvPath)
	if err != nil {
		logging.Fatal().Err(err).Str("file", csvPath).Msg("Import failed")
	}

	_, activeUsers, err := db.GetRecordCounts(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to read record counts")
	}

	logging.Info().
		Int("parsed", result.Parsed).
		Int("imported", result.Imported).
		Int("skipped_zero", result.Skipped).
		Int64("total_records", activeUsers).
		Msg("Import completed successfully")
}
