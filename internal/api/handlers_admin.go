// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/echotrace/echotrace/internal/logging"
	"github.com/echotrace/echotrace/internal/models"
)

// purgeRequest is the body of POST /api/admin/purge.
type purgeRequest struct {
	// Before is the RFC3339 cutoff; events created strictly before it
	// are deleted.
	Before string `json:"before"`
}

// AdminPurge handles POST /api/admin/purge, the retention maintenance
// operation. It refuses cutoffs in the future so a typo cannot wipe the
// whole table.
func (h *Handlers) AdminPurge(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "MALFORMED_PAYLOAD",
			"request body must be a JSON object with a before field", nil)
		return
	}

	cutoff, err := time.Parse(time.RFC3339, req.Before)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_CUTOFF",
			"before must be an RFC3339 timestamp", nil)
		return
	}
	if cutoff.After(time.Now()) {
		respondError(w, r, http.StatusBadRequest, "INVALID_CUTOFF",
			"before must not be in the future", nil)
		return
	}

	deleted, err := h.db.DeleteEventsBefore(r.Context(), cutoff)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "STORAGE_ERROR",
			"failed to purge webhook events", nil)
		return
	}

	logging.Ctx(r.Context()).Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("admin purge completed")

	respondEnvelope(w, http.StatusOK, &models.APIResponse{
		Status: "ok",
		Data: map[string]interface{}{
			"deleted": deleted,
			"before":  cutoff.UTC().Format(time.RFC3339),
		},
	})
}
