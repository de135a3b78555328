// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package models defines the data structures shared across the application:
// webhook events, windowed statistics, active-user snapshots, and the common
// API response envelope.
//
// Models carry JSON tags matching the dashboard's wire format. Fields that
// must never leave the server (raw submitter IP, the duplicate fingerprint)
// are tagged `json:"-"`.
package models
