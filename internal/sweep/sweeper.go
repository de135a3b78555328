// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package sweep runs the periodic deduplication sweep as a supervised
// service. Each run removes storage rows whose fingerprint duplicates a
// newer row and rewrites stored fingerprints after a configuration
// change, all inside one transaction, so a crash mid-sweep leaves the
// store unchanged.
package sweep

import (
	"context"
	"time"

	"github.com/echotrace/echotrace/internal/config"
	"github.com/echotrace/echotrace/internal/database"
	"github.com/echotrace/echotrace/internal/fanout"
	"github.com/echotrace/echotrace/internal/logging"
	"github.com/echotrace/echotrace/internal/metrics"
)

// Sweeper implements suture.Service: it runs the deduplication sweep
// on a fixed interval (and optionally once at startup) until the
// context is canceled.
//
// Sweep failures are logged and counted but never returned: a broken
// sweep must not take down ingestion, and the next tick retries anyway.
type Sweeper struct {
	db   *database.DB
	hub  *fanout.Hub
	cfg  config.SweepConfig
	name string
}

// New creates a sweeper. The hub is optional; when present, a sweep
// that removed rows publishes refreshed windowed stats so dashboards
// correct themselves without polling.
func New(db *database.DB, hub *fanout.Hub, cfg config.SweepConfig) *Sweeper {
	return &Sweeper{
		db:   db,
		hub:  hub,
		cfg:  cfg,
		name: "dedup-sweep",
	}
}

// Serve implements suture.Service.
func (s *Sweeper) Serve(ctx context.Context) error {
	if s.cfg.RunOnStart {
		s.runOnce(ctx)
	}

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes one sweep and records the outcome.
func (s *Sweeper) runOnce(ctx context.Context) {
	result, err := s.db.DeduplicateEvents(ctx)
	metricsDuration := time.Duration(0)
	removed := int64(0)
	if result != nil {
		metricsDuration = result.Duration
		removed = result.Removed
	}
	metrics.RecordSweep(metricsDuration, removed, err)

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logging.Error().Err(err).Msg("Deduplication sweep failed")
		return
	}

	logging.Info().
		Int64("removed", result.Removed).
		Int64("rewritten", result.Rewritten).
		Dur("duration", result.Duration).
		Msg("Deduplication sweep completed")

	if s.hub != nil && result.Removed > 0 {
		s.publishStats(ctx)
	}
}

// publishStats pushes fresh windowed stats to live subscribers after a
// sweep changed the row set.
func (s *Sweeper) publishStats(ctx context.Context) {
	stats, err := s.db.GetWindowedStats(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to compute stats after sweep")
		return
	}
	s.hub.PublishStatsUpdate(stats)
}

// String implements fmt.Stringer for supervisor logging.
func (s *Sweeper) String() string {
	return s.name
}
