// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/echotrace/echotrace/internal/models"
)

func TestInsertWebhookEventAssignsFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	event := testEvent(1)
	if err := db.InsertWebhookEvent(ctx, event); err != nil {
		t.Fatalf("InsertWebhookEvent() = %v", err)
	}

	if event.ID == uuid.Nil {
		t.Error("ID should be assigned on insert")
	}
	if event.Fingerprint == "" {
		t.Error("Fingerprint should be computed on insert")
	}
	if event.CreatedAt.IsZero() {
		t.Error("CreatedAt should be assigned on insert")
	}
}

func TestInsertWebhookEventDuplicate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := testEvent(1)
	if err := db.InsertWebhookEvent(ctx, first); err != nil {
		t.Fatalf("first insert = %v", err)
	}

	// Same fingerprint fields, different everything else
	second := testEvent(1)
	second.UserID = "bob"
	second.City = "Porto"

	err := db.InsertWebhookEvent(ctx, second)
	if !errors.Is(err, ErrDuplicateEvent) {
		t.Fatalf("second insert = %v, want ErrDuplicateEvent", err)
	}

	// The stored row is still the first submission
	stored, err := db.GetEventByFingerprint(ctx, first.Fingerprint)
	if err != nil {
		t.Fatalf("GetEventByFingerprint() = %v", err)
	}
	if stored.ID != first.ID {
		t.Errorf("stored.ID = %s, want %s", stored.ID, first.ID)
	}
	if stored.UserID != "alice" {
		t.Errorf("stored.UserID = %q, want alice", stored.UserID)
	}

	count, err := db.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents() = %v", err)
	}
	if count != 1 {
		t.Errorf("CountEvents() = %d, want 1", count)
	}
}

// TestInsertWebhookEventConcurrentDuplicates races identical
// submissions and requires exactly one winner. The unique index, not
// application locking, must arbitrate.
func TestInsertWebhookEventConcurrentDuplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	var created, duplicate, unexpected int

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.InsertWebhookEvent(ctx, testEvent(42))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, ErrDuplicateEvent):
				duplicate++
			default:
				unexpected++
				t.Errorf("unexpected insert error: %v", err)
			}
		}()
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("created = %d, want exactly 1", created)
	}
	if duplicate != workers-1 {
		t.Errorf("duplicate = %d, want %d", duplicate, workers-1)
	}

	count, err := db.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents() = %v", err)
	}
	if count != 1 {
		t.Errorf("CountEvents() = %d, want 1", count)
	}
}

func TestGetEventByFingerprintNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetEventByFingerprint(context.Background(), "no-such-fingerprint")
	if !errors.Is(err, ErrEventNotFound) {
		t.Errorf("GetEventByFingerprint() = %v, want ErrEventNotFound", err)
	}
}

func TestListEventsOrderAndFilters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		event := testEvent(i)
		if i%2 == 1 {
			event.UserID = "bob"
		}
		event.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := db.InsertWebhookEvent(ctx, event); err != nil {
			t.Fatalf("InsertWebhookEvent(%d) = %v", i, err)
		}
	}

	events, err := db.ListEvents(ctx, models.EventFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents() = %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("len(events) = %d, want 5", len(events))
	}
	// Newest first
	for i := 1; i < len(events); i++ {
		if events[i].CreatedAt.After(events[i-1].CreatedAt) {
			t.Errorf("events not ordered newest first at index %d", i)
		}
	}

	// User filter
	bobEvents, err := db.ListEvents(ctx, models.EventFilter{UserID: "bob", Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents(bob) = %v", err)
	}
	if len(bobEvents) != 2 {
		t.Errorf("len(bobEvents) = %d, want 2", len(bobEvents))
	}
	for _, e := range bobEvents {
		if e.UserID != "bob" {
			t.Errorf("filtered event has UserID %q", e.UserID)
		}
	}

	// Since filter
	recent, err := db.ListEvents(ctx, models.EventFilter{Since: base.Add(3 * time.Minute), Limit: 10})
	if err != nil {
		t.Fatalf("ListEvents(since) = %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("len(recent) = %d, want 2", len(recent))
	}

	// Limit clamp
	limited, err := db.ListEvents(ctx, models.EventFilter{Limit: 3})
	if err != nil {
		t.Fatalf("ListEvents(limit) = %v", err)
	}
	if len(limited) != 3 {
		t.Errorf("len(limited) = %d, want 3", len(limited))
	}
}

func TestCountDistinctFingerprints(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if err := db.InsertWebhookEvent(ctx, testEvent(i)); err != nil {
			t.Fatalf("InsertWebhookEvent(%d) = %v", i, err)
		}
	}

	count, err := db.CountDistinctFingerprints(ctx)
	if err != nil {
		t.Fatalf("CountDistinctFingerprints() = %v", err)
	}
	if count != 4 {
		t.Errorf("CountDistinctFingerprints() = %d, want 4", count)
	}
}

func TestDeleteEventsBefore(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := time.Now().UTC()
	old := testEvent(1)
	old.CreatedAt = now.Add(-48 * time.Hour)
	recent := testEvent(2)
	recent.CreatedAt = now.Add(-time.Hour)

	for _, e := range []*models.WebhookEvent{old, recent} {
		if err := db.InsertWebhookEvent(ctx, e); err != nil {
			t.Fatalf("InsertWebhookEvent() = %v", err)
		}
	}

	deleted, err := db.DeleteEventsBefore(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteEventsBefore() = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, err := db.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents() = %v", err)
	}
	if count != 1 {
		t.Errorf("CountEvents() = %d, want 1", count)
	}
}
