// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package api

import (
	"net/http"
	"time"

	"github.com/echotrace/echotrace/internal/models"
)

// Health handles GET /health. It answers 200 when the store is
// reachable, 500 otherwise, with the same body shape either way.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := &models.HealthStatus{
		Status:            "ok",
		Version:           h.version,
		DatabaseConnected: true,
		Subscribers:       h.hub.GetSubscriberCount(),
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	code := http.StatusOK
	if err := h.db.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.DatabaseConnected = false
		code = http.StatusInternalServerError
	}

	respondData(w, code, status)
}
