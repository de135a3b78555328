// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package database

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// insertRaw bypasses InsertWebhookEvent to plant rows with arbitrary
// stored fingerprints, simulating rows written under an older
// fingerprint definition.
func insertRaw(t *testing.T, db *DB, mediaURL, tweetURL, fingerprint string, createdAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.conn.ExecContext(context.Background(),
		`INSERT INTO webhooks (`+webhookColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, "alice", mediaURL, "audio_space", "Some Space", tweetURL,
		"203.0.113.7", "Lisbon", "Lisboa", "PT", fingerprint, createdAt,
	)
	if err != nil {
		t.Fatalf("insertRaw: %v", err)
	}
	return id
}

// TestDeduplicateEventsRepairsDrift plants three rows that are
// duplicates under the current definition but carry distinct legacy
// fingerprints, so the unique index never fired. The sweep must keep
// only the newest and refresh its stored fingerprint.
func TestDeduplicateEventsRepairsDrift(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	mediaURL := "https://cdn.example.com/spaces/legacy/playlist.m3u8"
	tweetURL := "https://x.com/i/spaces/legacy"

	insertRaw(t, db, mediaURL, tweetURL, "legacy-fp-1", now.Add(-3*time.Hour))
	insertRaw(t, db, mediaURL, tweetURL, "legacy-fp-2", now.Add(-2*time.Hour))
	newest := insertRaw(t, db, mediaURL, tweetURL, "legacy-fp-3", now.Add(-time.Hour))

	// An unrelated event must survive untouched
	unrelated := testEvent(99)
	if err := db.InsertWebhookEvent(ctx, unrelated); err != nil {
		t.Fatalf("InsertWebhookEvent() = %v", err)
	}

	result, err := db.DeduplicateEvents(ctx)
	if err != nil {
		t.Fatalf("DeduplicateEvents() = %v", err)
	}
	if result.Removed != 2 {
		t.Errorf("Removed = %d, want 2", result.Removed)
	}
	if result.Rewritten != 1 {
		t.Errorf("Rewritten = %d, want 1", result.Rewritten)
	}

	// The newest row survived and its fingerprint now matches the
	// current definition, so the index guards it again.
	survivor, err := db.GetEventByID(ctx, newest)
	if err != nil {
		t.Fatalf("GetEventByID(newest) = %v", err)
	}
	if want := db.Fingerprint(survivor); survivor.Fingerprint != want {
		t.Errorf("survivor fingerprint = %q, want %q", survivor.Fingerprint, want)
	}

	if _, err := db.GetEventByID(ctx, unrelated.ID); err != nil {
		t.Errorf("unrelated event should survive: %v", err)
	}

	count, err := db.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents() = %v", err)
	}
	if count != 2 {
		t.Errorf("CountEvents() = %d, want 2", count)
	}
}

// TestDeduplicateEventsIdempotent runs the sweep twice; the second pass
// must be a no-op.
func TestDeduplicateEventsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	mediaURL := "https://cdn.example.com/spaces/x/playlist.m3u8"
	tweetURL := "https://x.com/i/spaces/x"
	insertRaw(t, db, mediaURL, tweetURL, "old-a", now.Add(-2*time.Hour))
	insertRaw(t, db, mediaURL, tweetURL, "old-b", now.Add(-time.Hour))

	first, err := db.DeduplicateEvents(ctx)
	if err != nil {
		t.Fatalf("first sweep = %v", err)
	}
	if first.Removed != 1 || first.Rewritten != 1 {
		t.Errorf("first sweep = %+v, want Removed=1 Rewritten=1", first)
	}

	second, err := db.DeduplicateEvents(ctx)
	if err != nil {
		t.Fatalf("second sweep = %v", err)
	}
	if second.Removed != 0 || second.Rewritten != 0 {
		t.Errorf("second sweep = %+v, want a no-op", second)
	}
}

// TestDeduplicateEventsTieBreak gives two duplicates the same
// created_at; the higher id must win.
func TestDeduplicateEventsTieBreak(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	ts := time.Now().UTC().Truncate(time.Second)
	mediaURL := "https://cdn.example.com/spaces/tie/playlist.m3u8"
	tweetURL := "https://x.com/i/spaces/tie"
	a := insertRaw(t, db, mediaURL, tweetURL, "tie-a", ts)
	b := insertRaw(t, db, mediaURL, tweetURL, "tie-b", ts)

	if _, err := db.DeduplicateEvents(ctx); err != nil {
		t.Fatalf("DeduplicateEvents() = %v", err)
	}

	winner := a
	if b.String() > a.String() {
		winner = b
	}
	if _, err := db.GetEventByID(ctx, winner); err != nil {
		t.Errorf("row with the higher id should survive a created_at tie: %v", err)
	}

	count, err := db.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents() = %v", err)
	}
	if count != 1 {
		t.Errorf("CountEvents() = %d, want 1", count)
	}
}

func TestDeduplicateEventsEmptyTable(t *testing.T) {
	db := setupTestDB(t)

	result, err := db.DeduplicateEvents(context.Background())
	if err != nil {
		t.Fatalf("DeduplicateEvents() = %v", err)
	}
	if result.Removed != 0 || result.Rewritten != 0 {
		t.Errorf("sweep over empty table = %+v, want a no-op", result)
	}
}
