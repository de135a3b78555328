// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package database

import (
	"context"
	"testing"
)

// TestFingerprintGoMatchesSQL verifies the Go and SQL fingerprint
// definitions agree, since the insert path uses one and the sweep the
// other. A row's stored fingerprint must equal the SQL expression
// recomputed over its payload columns.
func TestFingerprintGoMatchesSQL(t *testing.T) {
	for _, fields := range [][]string{
		{"media_url", "tweet_url"},
		{"media_url"},
		{"user_id", "media_url", "tweet_url", "country"},
	} {
		db := setupTestDBWithFields(t, fields...)
		ctx := context.Background()

		event := testEvent(7)
		if err := db.InsertWebhookEvent(ctx, event); err != nil {
			t.Fatalf("fields %v: InsertWebhookEvent() = %v", fields, err)
		}

		query := "SELECT " + db.fingerprintSQLExpr() + " FROM webhooks WHERE id = ?"
		var sqlFingerprint string
		if err := db.conn.QueryRowContext(ctx, query, event.ID).Scan(&sqlFingerprint); err != nil {
			t.Fatalf("fields %v: SQL fingerprint query: %v", fields, err)
		}

		if sqlFingerprint != event.Fingerprint {
			t.Errorf("fields %v: SQL fingerprint %q != Go fingerprint %q",
				fields, sqlFingerprint, event.Fingerprint)
		}
	}
}

func TestFingerprintSensitivity(t *testing.T) {
	db := setupTestDB(t)

	a := testEvent(1)
	b := testEvent(1)
	if db.Fingerprint(a) != db.Fingerprint(b) {
		t.Error("identical payloads should produce identical fingerprints")
	}

	b.MediaURL = "https://cdn.example.com/spaces/other/playlist.m3u8"
	if db.Fingerprint(a) == db.Fingerprint(b) {
		t.Error("fingerprint should change when a configured field changes")
	}

	// Fields outside the tuple must not affect the key
	c := testEvent(1)
	c.UserID = "someone-else"
	c.City = "Reykjavik"
	if db.Fingerprint(a) != db.Fingerprint(c) {
		t.Error("fingerprint should ignore non-configured fields")
	}
}
