// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package api provides the HTTP surface: webhook ingestion, the
// dashboard read endpoints, the live event stream over SSE and
// WebSocket, health, metrics and the admin retention purge.
//
// Routing uses chi with go-chi/cors and go-chi/httprate. Data
// endpoints keep the wire shapes the dashboard and browser extension
// already speak (bare arrays, a bare count); the envelope with
// status/error/metadata is reserved for error responses and admin
// operations.
package api
