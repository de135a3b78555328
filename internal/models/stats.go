// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package models

import "time"

// WindowBucket is one period of the windowed stats: the current-period count,
// the comparable prior-period count, and the period-over-period change.
//
// ChangePct is nil when the prior period had zero events. The aggregator
// never emits Inf or NaN; a nil pointer serializes as JSON null, which the
// dashboard renders as "—".
type WindowBucket struct {
	Count     int      `json:"count"`
	Previous  int      `json:"previous"`
	ChangePct *float64 `json:"changePct"`
}

// WindowedStats is the payload of GET /api/webhooks/stats.
//
// Period boundaries:
//   - Today: since local midnight, compared against all of yesterday.
//   - Week: rolling last 7 days, compared against the 7 days before that.
//   - Month: calendar month to date, compared against the entire previous
//     calendar month.
//   - Rolling7/Rolling30: average accepted events per day over the rolling
//     window.
type WindowedStats struct {
	Today     WindowBucket `json:"today"`
	Week      WindowBucket `json:"week"`
	Month     WindowBucket `json:"month"`
	Rolling7  float64      `json:"rolling7"`
	Rolling30 float64      `json:"rolling30"`
}

// LocationStat is one (city, region, country) group of the location
// histogram, ordered by descending count.
type LocationStat struct {
	City    string `json:"city"`
	Region  string `json:"region"`
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// ActiveUserSnapshot holds one day of the externally sourced active-install
// series. Rows are upserted by date during CSV import and feed the dashboard
// growth chart.
type ActiveUserSnapshot struct {
	Date      string    `json:"date"` // YYYY-MM-DD
	UserCount int       `json:"users"`
	UpdatedAt time.Time `json:"-"`
}

// HealthStatus is the GET /health response body.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	Subscribers       int     `json:"subscribers"`
	Uptime            float64 `json:"uptime_seconds"`
}
