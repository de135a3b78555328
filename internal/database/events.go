// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/echotrace/echotrace/internal/models"
)

// webhookColumns is the canonical column list for webhook scans.
const webhookColumns = `id, user_id, media_url, media_type, space_name, tweet_url,
	ip, city, region, country, fingerprint, created_at`

// InsertWebhookEvent persists an event, assigning ID, Fingerprint and
// CreatedAt when unset. It inserts first and lets the unique index
// decide: a fingerprint collision returns ErrDuplicateEvent without any
// read-then-write race.
func (db *DB) InsertWebhookEvent(ctx context.Context, event *models.WebhookEvent) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Fingerprint == "" {
		event.Fingerprint = db.Fingerprint(event)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO webhooks (` + webhookColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.conn.ExecContext(ctx, query,
		event.ID, event.UserID, event.MediaURL, event.MediaType, event.SpaceName,
		event.TweetURL, event.IP, event.City, event.Region, event.Country,
		event.Fingerprint, event.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("fingerprint %s: %w", event.Fingerprint, ErrDuplicateEvent)
		}
		return fmt.Errorf("failed to insert webhook event: %w", err)
	}
	return nil
}

// GetEventByFingerprint retrieves the stored event carrying the given
// fingerprint. Used to build the duplicate response after an insert
// collision. Returns ErrEventNotFound when no row matches.
func (db *DB) GetEventByFingerprint(ctx context.Context, fingerprint string) (*models.WebhookEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE fingerprint = ?`
	return db.scanEvent(db.conn.QueryRowContext(ctx, query, fingerprint))
}

// GetEventByID retrieves a single event by its server-assigned ID.
func (db *DB) GetEventByID(ctx context.Context, id uuid.UUID) (*models.WebhookEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE id = ?`
	return db.scanEvent(db.conn.QueryRowContext(ctx, query, id))
}

// ListEvents returns events newest first, optionally filtered by
// submitter and creation time. Limit must be pre-clamped by the caller;
// zero falls back to 200.
func (db *DB) ListEvents(ctx context.Context, filter models.EventFilter) ([]*models.WebhookEvent, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}

	query := `SELECT ` + webhookColumns + ` FROM webhooks`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, filter.Since)
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhook events: %w", err)
	}
	defer closeQuietly(rows)

	var events []*models.WebhookEvent
	for rows.Next() {
		event := &models.WebhookEvent{}
		if err := rows.Scan(
			&event.ID, &event.UserID, &event.MediaURL, &event.MediaType, &event.SpaceName,
			&event.TweetURL, &event.IP, &event.City, &event.Region, &event.Country,
			&event.Fingerprint, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan webhook event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate webhook events: %w", err)
	}

	return events, nil
}

// CountEvents returns the total number of stored events.
func (db *DB) CountEvents(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var count int64
	err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM webhooks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count webhook events: %w", err)
	}
	return count, nil
}

// CountDistinctFingerprints returns the number of unique events under
// the CURRENT fingerprint definition, computed from the payload columns
// rather than the stored fingerprint. After a fingerprint config change
// this stays truthful even before the sweep has rewritten old rows.
func (db *DB) CountDistinctFingerprints(ctx context.Context) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := fmt.Sprintf("SELECT COUNT(DISTINCT %s) FROM webhooks", db.fingerprintSQLExpr())

	var count int64
	err := db.conn.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct fingerprints: %w", err)
	}
	return count, nil
}

// DeleteEventsBefore removes all events created strictly before the
// cutoff. Used by the admin retention purge. Returns the rows deleted.
func (db *DB) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	res, err := db.conn.ExecContext(ctx, "DELETE FROM webhooks WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete webhook events before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read deleted row count: %w", err)
	}
	return deleted, nil
}

func (db *DB) scanEvent(row *sql.Row) (*models.WebhookEvent, error) {
	event := &models.WebhookEvent{}
	err := row.Scan(
		&event.ID, &event.UserID, &event.MediaURL, &event.MediaType, &event.SpaceName,
		&event.TweetURL, &event.IP, &event.City, &event.Region, &event.Country,
		&event.Fingerprint, &event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan webhook event: %w", err)
	}
	return event, nil
}
