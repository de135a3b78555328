// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package database

import (
	"context"
	"fmt"
	"time"
)

// SweepResult reports what a deduplication pass changed.
type SweepResult struct {
	// Removed is the number of stale duplicate rows deleted.
	Removed int64

	// Rewritten is the number of surviving rows whose stored
	// fingerprint was refreshed to the current definition.
	Rewritten int64

	// Duration is the wall time of the pass.
	Duration time.Duration
}

// DeduplicateEvents removes stale duplicates in one transaction.
//
// Rows are grouped by the CURRENT fingerprint expression recomputed
// from the payload columns, not by the stored fingerprint. This is what
// makes the sweep a repair job: rows inserted under an older field
// tuple collapse into their group even though their stored fingerprints
// differ. Within each group the newest row wins (created_at, then id as
// the tie break) and every other row is deleted. Surviving rows with a
// stale stored fingerprint are rewritten so the unique index guards the
// current definition again.
//
// The pass is idempotent: a second run over unchanged data deletes and
// rewrites nothing.
func (db *DB) DeduplicateEvents(ctx context.Context) (*SweepResult, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	expr := db.fingerprintSQLExpr()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin sweep transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery := fmt.Sprintf(`DELETE FROM webhooks WHERE id IN (
		SELECT id FROM (
			SELECT id, row_number() OVER (
				PARTITION BY %s
				ORDER BY created_at DESC, id DESC
			) AS rn
			FROM webhooks
		) WHERE rn > 1
	)`, expr)

	res, err := tx.ExecContext(ctx, deleteQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to delete stale duplicates: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep delete count: %w", err)
	}

	// Survivors are unique per current expression now, so rewriting the
	// stored fingerprint cannot collide on the unique index.
	rewriteQuery := fmt.Sprintf(
		"UPDATE webhooks SET fingerprint = %s WHERE fingerprint <> %s", expr, expr)

	res, err = tx.ExecContext(ctx, rewriteQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to rewrite stale fingerprints: %w", err)
	}
	rewritten, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read sweep rewrite count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit sweep transaction: %w", err)
	}

	return &SweepResult{
		Removed:   removed,
		Rewritten: rewritten,
		Duration:  time.Since(start),
	}, nil
}
