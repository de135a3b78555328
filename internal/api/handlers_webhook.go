// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/echotrace/echotrace/internal/ingest"
	"github.com/echotrace/echotrace/internal/logging"
	"github.com/echotrace/echotrace/internal/models"
)

// webhookItemResponse is the wire shape for one processed submission.
type webhookItemResponse struct {
	Status  string               `json:"status"`
	Webhook *models.WebhookEvent `json:"webhook,omitempty"`
	Error   *models.APIError     `json:"error,omitempty"`
}

// Webhook handles POST /api/webhook: a single submission object or an
// array of them.
//
// Single submissions answer with the item's own status code: 201 for
// created, 409 for duplicate (carrying the originally stored event),
// 400 for validation failures. Batches always answer 200 with per-item
// results in submission order, so the extension can retry exactly the
// failed items.
func (h *Handlers) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.cfg.Webhook.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
				"request body exceeds the configured limit", nil)
			return
		}
		respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", "failed to read request body", nil)
		return
	}

	results, isBatch, err := h.processor.Process(r.Context(), body)
	if err != nil {
		var batchErr *ingest.BatchTooLargeError
		switch {
		case errors.As(err, &batchErr):
			respondError(w, r, http.StatusRequestEntityTooLarge, "BATCH_TOO_LARGE", batchErr.Error(), nil)
		case errors.Is(err, ingest.ErrEmptyBatch):
			respondError(w, r, http.StatusBadRequest, "EMPTY_BATCH", "submission contains no items", nil)
		default:
			respondError(w, r, http.StatusBadRequest, "MALFORMED_PAYLOAD", err.Error(), nil)
		}
		return
	}

	if isBatch {
		items := make([]*webhookItemResponse, len(results))
		for i, res := range results {
			items[i] = itemResponse(r, res)
		}
		respondData(w, http.StatusOK, items)
		return
	}

	res := results[0]
	switch res.Status {
	case ingest.StatusCreated:
		respondData(w, http.StatusCreated, itemResponse(r, res))
	case ingest.StatusDuplicate:
		respondData(w, http.StatusConflict, itemResponse(r, res))
	case ingest.StatusInvalid:
		apiErr := res.Validation.ToAPIError()
		respondError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
	default:
		respondError(w, r, http.StatusInternalServerError, "STORAGE_ERROR",
			"failed to store webhook event", nil)
	}
}

// itemResponse converts an ingest result into its wire shape. Internal
// failure details never leave the server; the correlation ID lets an
// operator find them in the logs.
func itemResponse(r *http.Request, res *ingest.Result) *webhookItemResponse {
	item := &webhookItemResponse{Status: res.Status, Webhook: res.Event}

	switch res.Status {
	case ingest.StatusInvalid:
		apiErr := res.Validation.ToAPIError()
		item.Error = &models.APIError{
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}
	case ingest.StatusError:
		item.Error = &models.APIError{
			Code:          "STORAGE_ERROR",
			Message:       "failed to store webhook event",
			CorrelationID: logging.CorrelationIDFromContext(r.Context()),
		}
	}

	return item
}
