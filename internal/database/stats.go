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

// GetWindowedStats computes the dashboard stat windows in one query.
func (db *DB) GetWindowedStats(ctx context.Context) (*models.WindowedStats, error) {
	return db.windowedStatsAt(ctx, time.Now())
}

// windowedStatsAt is the clock-injected core of GetWindowedStats.
//
// Window boundaries:
//   - today:   since local midnight, prior = all of yesterday
//   - week:    rolling last 7 days, prior = the 7 days before that
//   - month:   calendar month to date, prior = the entire previous month
//   - rolling: last 7/30 days, reported as an events-per-day average
func (db *DB) windowedStatsAt(ctx context.Context, now time.Time) (*models.WindowedStats, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	yesterdayStart := todayStart.AddDate(0, 0, -1)
	weekStart := now.Add(-7 * 24 * time.Hour)
	prevWeekStart := now.Add(-14 * 24 * time.Hour)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)
	rolling30Start := now.Add(-30 * 24 * time.Hour)

	query := `SELECT
		COUNT(*) FILTER (WHERE created_at >= ?) AS today,
		COUNT(*) FILTER (WHERE created_at >= ? AND created_at < ?) AS yesterday,
		COUNT(*) FILTER (WHERE created_at >= ?) AS week,
		COUNT(*) FILTER (WHERE created_at >= ? AND created_at < ?) AS prev_week,
		COUNT(*) FILTER (WHERE created_at >= ?) AS month,
		COUNT(*) FILTER (WHERE created_at >= ? AND created_at < ?) AS prev_month,
		COUNT(*) FILTER (WHERE created_at >= ?) AS rolling30
	FROM webhooks
	WHERE created_at <= ?`

	var today, yesterday, week, prevWeek, month, prevMonth, rolling30 int
	err := db.conn.QueryRowContext(ctx, query,
		todayStart,
		yesterdayStart, todayStart,
		weekStart,
		prevWeekStart, weekStart,
		monthStart,
		prevMonthStart, monthStart,
		rolling30Start,
		now,
	).Scan(&today, &yesterday, &week, &prevWeek, &month, &prevMonth, &rolling30)
	if err != nil {
		return nil, fmt.Errorf("failed to compute windowed stats: %w", err)
	}

	return &models.WindowedStats{
		Today:     models.WindowBucket{Count: today, Previous: yesterday, ChangePct: changePct(today, yesterday)},
		Week:      models.WindowBucket{Count: week, Previous: prevWeek, ChangePct: changePct(week, prevWeek)},
		Month:     models.WindowBucket{Count: month, Previous: prevMonth, ChangePct: changePct(month, prevMonth)},
		Rolling7:  float64(week) / 7,
		Rolling30: float64(rolling30) / 30,
	}, nil
}

// changePct returns the period-over-period change percentage, or nil
// when the prior period had no events. Never Inf or NaN.
func changePct(current, previous int) *float64 {
	if previous == 0 {
		return nil
	}
	pct := (float64(current) - float64(previous)) / float64(previous) * 100
	return &pct
}

// locationTimeframes maps the public timeframe names to lookback windows.
var locationTimeframes = map[string]time.Duration{
	"day":   24 * time.Hour,
	"week":  7 * 24 * time.Hour,
	"month": 30 * 24 * time.Hour,
}

// GetLocationHistogram groups events in the given timeframe by
// (city, region, country), ordered by descending count. Timeframe must
// be one of day, week or month.
func (db *DB) GetLocationHistogram(ctx context.Context, timeframe string) ([]*models.LocationStat, error) {
	lookback, ok := locationTimeframes[timeframe]
	if !ok {
		return nil, fmt.Errorf("unknown timeframe %q (want day, week or month)", timeframe)
	}

	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	query := `SELECT city, region, country, COUNT(*) AS cnt
		FROM webhooks
		WHERE created_at >= ?
		GROUP BY city, region, country
		ORDER BY cnt DESC, country ASC, region ASC, city ASC`

	rows, err := db.conn.QueryContext(ctx, query, time.Now().Add(-lookback))
	if err != nil {
		return nil, fmt.Errorf("failed to compute location histogram: %w", err)
	}
	defer closeQuietly(rows)

	// Non-nil so an empty window serializes as [] rather than null.
	stats := []*models.LocationStat{}
	for rows.Next() {
		s := &models.LocationStat{}
		if err := rows.Scan(&s.City, &s.Region, &s.Country, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan location stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate location stats: %w", err)
	}

	return stats, nil
}
