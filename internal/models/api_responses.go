// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package models

import "time"

// APIError carries a machine-readable error code, a human-readable message,
// and optional structured details (e.g. per-field validation failures).
// Internal error detail such as storage errors is never placed here; it is
// logged server-side with the correlation ID instead.
type APIError struct {
	Code          string                 `json:"code"`
	Message       string                 `json:"message"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
}

// Metadata is attached to error envelopes and admin responses.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIResponse is the error/admin envelope. Data endpoints consumed by the
// dashboard (feed, count, stats, locations) return their payloads bare to
// preserve the wire format the client was built against.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data,omitempty"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}
