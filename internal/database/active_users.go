// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/echotrace/echotrace/internal/models"
)

// UpsertActiveUserSnapshots inserts or updates daily active-install
// rows keyed by date. The whole batch goes through one transaction so
// a half-imported CSV never becomes visible.
func (db *DB) UpsertActiveUserSnapshots(ctx context.Context, snapshots []*models.ActiveUserSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin active-users transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO active_users (date, user_count, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			user_count = excluded.user_count,
			updated_at = excluded.updated_at`

	now := time.Now().UTC()
	for _, snap := range snapshots {
		if _, err := tx.ExecContext(ctx, query, snap.Date, snap.UserCount, now); err != nil {
			return fmt.Errorf("failed to upsert active users for %s: %w", snap.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit active-users transaction: %w", err)
	}
	return nil
}

// ListActiveUserSnapshots returns up to days of the series, oldest
// first, suitable for the dashboard growth chart.
func (db *DB) ListActiveUserSnapshots(ctx context.Context, days int) ([]*models.ActiveUserSnapshot, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if days <= 0 {
		days = 90
	}

	query := `SELECT date, user_count, updated_at FROM (
			SELECT date, user_count, updated_at
			FROM active_users
			ORDER BY date DESC
			LIMIT ?
		) ORDER BY date ASC`

	rows, err := db.conn.QueryContext(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	defer closeQuietly(rows)

	snapshots := []*models.ActiveUserSnapshot{}
	for rows.Next() {
		var date time.Time
		snap := &models.ActiveUserSnapshot{}
		if err := rows.Scan(&date, &snap.UserCount, &snap.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan active users row: %w", err)
		}
		snap.Date = date.Format("2006-01-02")
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate active users: %w", err)
	}

	return snapshots, nil
}
