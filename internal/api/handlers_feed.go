// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package api

import (
	"net/http"

	"github.com/echotrace/echotrace/internal/models"
)

// ListWebhooks handles GET /api/webhooks: the newest events, optionally
// filtered by userId, as a bare array.
func (h *Handlers) ListWebhooks(w http.ResponseWriter, r *http.Request) {
	limit := getIntParam(r, "limit", h.cfg.API.FeedPageSize)
	if limit <= 0 || limit > h.cfg.API.FeedPageSize {
		limit = h.cfg.API.FeedPageSize
	}

	events, err := h.db.ListEvents(r.Context(), models.EventFilter{
		UserID: r.URL.Query().Get("userId"),
		Limit:  limit,
	})
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "QUERY_ERROR",
			"failed to list webhook events", nil)
		return
	}
	if events == nil {
		events = []*models.WebhookEvent{}
	}

	respondData(w, http.StatusOK, events)
}

// WebhookCount handles GET /api/webhooks/count: the number of unique
// events under the current fingerprint definition, as a bare integer.
func (h *Handlers) WebhookCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.db.CountDistinctFingerprints(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "QUERY_ERROR",
			"failed to count webhook events", nil)
		return
	}

	respondData(w, http.StatusOK, count)
}

// WebhookStats handles GET /api/webhooks/stats.
func (h *Handlers) WebhookStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.db.GetWindowedStats(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "QUERY_ERROR",
			"failed to compute webhook stats", nil)
		return
	}

	respondData(w, http.StatusOK, stats)
}

// WebhookLocations handles GET /api/webhooks/locations?timeframe=day|week|month.
func (h *Handlers) WebhookLocations(w http.ResponseWriter, r *http.Request) {
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = "day"
	}

	stats, err := h.db.GetLocationHistogram(r.Context(), timeframe)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_TIMEFRAME",
			"timeframe must be one of day, week or month", nil)
		return
	}

	respondData(w, http.StatusOK, stats)
}

// ActiveUsers handles GET /api/active-users?days=N: the imported daily
// active-install series, oldest first.
func (h *Handlers) ActiveUsers(w http.ResponseWriter, r *http.Request) {
	days := getIntParam(r, "days", h.cfg.API.ActiveUserDays)
	if days <= 0 || days > 365 {
		days = h.cfg.API.ActiveUserDays
	}

	snapshots, err := h.db.ListActiveUserSnapshots(r.Context(), days)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "QUERY_ERROR",
			"failed to list active users", nil)
		return
	}

	respondData(w, http.StatusOK, snapshots)
}
