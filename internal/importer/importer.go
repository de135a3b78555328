// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package importer loads the Chrome Web Store "Weekly users over time"
// CSV export into the active-user series. Imports are idempotent: rows
// are upserted by date, so re-running with an updated export refreshes
// existing days instead of duplicating them.
package importer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/echotrace/echotrace/internal/database"
	"github.com/echotrace/echotrace/internal/logging"
	"github.com/echotrace/echotrace/internal/models"
)

// expectedHeader marks the Chrome Web Store export format. The file
// carries two header lines before the data rows.
const expectedHeader = "Weekly users over time"

// Result summarizes one import run.
type Result struct {
	Parsed   int
	Skipped  int
	Imported int
}

// ParseCSV reads the weekly-users export and returns the snapshots to
// import. Zero-count rows are dropped: the store reports 0 for days
// before the extension was listed, and charting them as real data
// would flatten the series.
func ParseCSV(r io.Reader) ([]*models.ActiveUserSnapshot, int, error) {
	scanner := bufio.NewScanner(r)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(lines) == 0 {
		return nil, 0, fmt.Errorf("CSV file is empty")
	}

	if !strings.Contains(lines[0], expectedHeader) {
		logging.Warn().Str("header", lines[0]).
			Msg("CSV may not be in the expected format; first line should contain \"Weekly users over time\"")
	}

	// Data starts after the two header lines
	if len(lines) <= 2 {
		return nil, 0, fmt.Errorf("CSV contains no data rows")
	}

	var (
		snapshots []*models.ActiveUserSnapshot
		skipped   int
	)
	for i, row := range lines[2:] {
		date, count, err := parseRow(row)
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", i+3, err)
		}
		if count == 0 {
			skipped++
			continue
		}
		snapshots = append(snapshots, &models.ActiveUserSnapshot{
			Date:      date,
			UserCount: count,
		})
	}

	return snapshots, skipped, nil
}

// parseRow parses one "MM/DD/YY,count" line into a YYYY-MM-DD date and
// a user count. The store exports 2-digit years.
func parseRow(row string) (string, int, error) {
	dateStr, countStr, found := strings.Cut(row, ",")
	if !found {
		return "", 0, fmt.Errorf("invalid row %q: expected date,count", row)
	}

	parts := strings.Split(strings.TrimSpace(dateStr), "/")
	if len(parts) != 3 {
		return "", 0, fmt.Errorf("invalid date format: %s", dateStr)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil || month < 1 || month > 12 {
		return "", 0, fmt.Errorf("invalid month in date: %s", dateStr)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil || day < 1 || day > 31 {
		return "", 0, fmt.Errorf("invalid day in date: %s", dateStr)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", 0, fmt.Errorf("invalid year in date: %s", dateStr)
	}
	if year < 100 {
		year += 2000
	}

	count, err := strconv.Atoi(strings.TrimSpace(countStr))
	if err != nil {
		return "", 0, fmt.Errorf("invalid user count: %s", countStr)
	}

	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), count, nil
}

// ImportFile parses the CSV at path and upserts its rows in one
// transaction.
func ImportFile(ctx context.Context, db *database.DB, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = f.Close() }()

	snapshots, skipped, err := ParseCSV(f)
	if err != nil {
		return nil, err
	}

	if err := db.UpsertActiveUserSnapshots(ctx, snapshots); err != nil {
		return nil, fmt.Errorf("failed to upsert snapshots: %w", err)
	}

	logging.Info().
		Int("imported", len(snapshots)).
		Int("skipped_zero", skipped).
		Str("file", path).
		Msg("Active-user import completed")

	return &Result{
		Parsed:   len(snapshots) + skipped,
		Skipped:  skipped,
		Imported: len(snapshots),
	}, nil
}
