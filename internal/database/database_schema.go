// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

/*
database_schema.go - Database Schema Management

Tables:
  - webhooks: one row per accepted download event. The fingerprint
    column carries the duplicate-detection key and is enforced unique
    by index, which makes the no-duplicates guarantee permanent rather
    than a racy read-then-write check.
  - active_users: one row per day of the externally sourced
    active-install series, upserted by date during CSV import.

Schema Strategy:
All columns are defined in the initial CREATE TABLE statements. The
fingerprint definition can change between releases via configuration;
the deduplication sweep repairs rows written under an older definition,
so no column migrations are needed for that case.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE TABLE IF NOT EXISTS webhooks (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			media_url TEXT NOT NULL,
			media_type TEXT NOT NULL,
			space_name TEXT NOT NULL,
			tweet_url TEXT NOT NULL,
			ip TEXT NOT NULL,
			city TEXT NOT NULL,
			region TEXT NOT NULL,
			country TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS active_users (
			date DATE PRIMARY KEY,
			user_count INTEGER NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates indexes for common query patterns
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		// The uniqueness guarantee. Insert races resolve here, not in
		// application code.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_webhooks_fingerprint ON webhooks(fingerprint)`,

		// Feed and stats queries filter and order by recency.
		`CREATE INDEX IF NOT EXISTS idx_webhooks_created_at ON webhooks(created_at)`,

		// Feed queries optionally filter by submitter.
		`CREATE INDEX IF NOT EXISTS idx_webhooks_user_id ON webhooks(user_id)`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}

	return nil
}
