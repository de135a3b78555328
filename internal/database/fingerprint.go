// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package database

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/echotrace/echotrace/internal/models"
)

// fingerprintAccessors maps a configured field name to the event field
// it reads. Field names match the webhooks column names, so the same
// list drives both the Go computation and the SQL expression below.
var fingerprintAccessors = map[string]func(*models.WebhookEvent) string{
	"user_id":    func(e *models.WebhookEvent) string { return e.UserID },
	"media_url":  func(e *models.WebhookEvent) string { return e.MediaURL },
	"media_type": func(e *models.WebhookEvent) string { return e.MediaType },
	"space_name": func(e *models.WebhookEvent) string { return e.SpaceName },
	"tweet_url":  func(e *models.WebhookEvent) string { return e.TweetURL },
	"city":       func(e *models.WebhookEvent) string { return e.City },
	"region":     func(e *models.WebhookEvent) string { return e.Region },
	"country":    func(e *models.WebhookEvent) string { return e.Country },
}

// Fingerprint computes the duplicate-detection key for an event under
// the configured field tuple: the hex SHA-256 of the field values
// joined with '|' in configuration order.
//
// This MUST stay equivalent to fingerprintSQLExpr. The insert path uses
// this function; the sweep and distinct-count queries use the SQL form.
func (db *DB) Fingerprint(e *models.WebhookEvent) string {
	values := make([]string, len(db.fingerprintFields))
	for i, field := range db.fingerprintFields {
		accessor, ok := fingerprintAccessors[field]
		if !ok {
			// Unreachable after config validation; fail loud in queries
			// rather than silently weakening the key.
			panic(fmt.Sprintf("unknown fingerprint field %q", field))
		}
		values[i] = accessor(e)
	}

	sum := sha256.Sum256([]byte(strings.Join(values, "|")))
	return hex.EncodeToString(sum[:])
}

// fingerprintSQLExpr returns the SQL expression computing the same key
// as Fingerprint over the webhooks payload columns. DuckDB's sha256()
// returns lowercase hex, matching hex.EncodeToString.
//
// Field names come from validated configuration, never from request
// input, so interpolating them is safe.
func (db *DB) fingerprintSQLExpr() string {
	cols := strings.Join(db.fingerprintFields, ", ")
	if len(db.fingerprintFields) == 1 {
		return fmt.Sprintf("sha256(%s)", cols)
	}
	return fmt.Sprintf("sha256(concat_ws('|', %s))", cols)
}
