// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package database

import (
	"context"
	"testing"

	"github.com/echotrace/echotrace/internal/models"
)

func TestUpsertActiveUserSnapshots(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	batch := []*models.ActiveUserSnapshot{
		{Date: "2026-08-10", UserCount: 120},
		{Date: "2026-08-11", UserCount: 134},
		{Date: "2026-08-12", UserCount: 131},
	}
	if err := db.UpsertActiveUserSnapshots(ctx, batch); err != nil {
		t.Fatalf("UpsertActiveUserSnapshots() = %v", err)
	}

	// Re-import with a corrected count for one day
	update := []*models.ActiveUserSnapshot{
		{Date: "2026-08-11", UserCount: 140},
	}
	if err := db.UpsertActiveUserSnapshots(ctx, update); err != nil {
		t.Fatalf("UpsertActiveUserSnapshots(update) = %v", err)
	}

	snapshots, err := db.ListActiveUserSnapshots(ctx, 90)
	if err != nil {
		t.Fatalf("ListActiveUserSnapshots() = %v", err)
	}
	if len(snapshots) != 3 {
		t.Fatalf("len(snapshots) = %d, want 3", len(snapshots))
	}

	// Oldest first
	if snapshots[0].Date != "2026-08-10" || snapshots[2].Date != "2026-08-12" {
		t.Errorf("snapshots not ordered oldest first: %s .. %s", snapshots[0].Date, snapshots[2].Date)
	}
	if snapshots[1].UserCount != 140 {
		t.Errorf("snapshots[1].UserCount = %d, want 140 after upsert", snapshots[1].UserCount)
	}
}

func TestListActiveUserSnapshotsLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	batch := []*models.ActiveUserSnapshot{
		{Date: "2026-08-01", UserCount: 100},
		{Date: "2026-08-02", UserCount: 101},
		{Date: "2026-08-03", UserCount: 102},
		{Date: "2026-08-04", UserCount: 103},
	}
	if err := db.UpsertActiveUserSnapshots(ctx, batch); err != nil {
		t.Fatalf("UpsertActiveUserSnapshots() = %v", err)
	}

	// A limit keeps the most recent days but still reports oldest first
	snapshots, err := db.ListActiveUserSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("ListActiveUserSnapshots(2) = %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("len(snapshots) = %d, want 2", len(snapshots))
	}
	if snapshots[0].Date != "2026-08-03" || snapshots[1].Date != "2026-08-04" {
		t.Errorf("got %s, %s; want the two newest days oldest first", snapshots[0].Date, snapshots[1].Date)
	}
}

func TestUpsertActiveUserSnapshotsEmptyBatch(t *testing.T) {
	db := setupTestDB(t)

	if err := db.UpsertActiveUserSnapshots(context.Background(), nil); err != nil {
		t.Errorf("UpsertActiveUserSnapshots(nil) = %v, want nil", err)
	}
}
