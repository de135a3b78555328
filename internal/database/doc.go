// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package database is the DuckDB-backed event store.
//
// It owns the webhooks and active_users tables, the storage-level
// uniqueness guarantee over the duplicate fingerprint, the windowed
// stats and location histogram aggregations, and the periodic
// deduplication sweep that repairs fingerprint drift after the
// configured field tuple changes.
package database
