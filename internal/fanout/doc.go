// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package fanout delivers accepted webhook events to live dashboard
// subscribers over WebSocket and SSE.
//
// Delivery is at-most-once per subscriber with best-effort semantics: a
// subscriber whose buffer is full is dropped rather than allowed to
// stall ingestion. Publish is synchronous with respect to the caller,
// so an event is only ever announced after its store write committed.
package fanout
