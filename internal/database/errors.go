// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package database

import (
	"errors"
	"io"
	"strings"
)

// ErrDuplicateEvent is returned by InsertWebhookEvent when the event's
// fingerprint already exists. Callers use errors.Is to translate it
// into the duplicate response.
var ErrDuplicateEvent = errors.New("duplicate webhook event")

// ErrEventNotFound is returned by lookups that match no row.
var ErrEventNotFound = errors.New("webhook event not found")

// isUniqueConstraintError checks if an error is a unique constraint violation.
// DuckDB does not expose typed errors through database/sql; its unique
// violation messages contain "unique constraint" or "Duplicate key".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
