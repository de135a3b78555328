// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package ingest turns raw webhook submissions into stored, fanned-out
// events.
//
// The pipeline per item is: validate, insert (the unique index decides
// duplicates), publish. Publish strictly follows a committed insert, so
// dashboard subscribers never see a phantom event.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/echotrace/echotrace/internal/database"
	"github.com/echotrace/echotrace/internal/fanout"
	"github.com/echotrace/echotrace/internal/logging"
	"github.com/echotrace/echotrace/internal/metrics"
	"github.com/echotrace/echotrace/internal/models"
	"github.com/echotrace/echotrace/internal/validation"
)

// Item statuses, also used as metric outcome labels.
const (
	StatusCreated   = "created"
	StatusDuplicate = "duplicate"
	StatusInvalid   = "invalid"
	StatusError     = "error"
)

// Result is the outcome for one submission item, in submission order.
type Result struct {
	// Status is one of created, duplicate, invalid, error.
	Status string

	// Event is the stored event for created items, or the previously
	// stored event for duplicates. Nil for invalid and error items.
	Event *models.WebhookEvent

	// Validation carries field details when Status is invalid.
	Validation *validation.RequestValidationError

	// Err is the underlying failure when Status is error.
	Err error
}

// ErrEmptyBatch is returned for a submission that decodes to zero items.
var ErrEmptyBatch = errors.New("submission contains no items")

// BatchTooLargeError is returned when a batch exceeds the configured cap.
type BatchTooLargeError struct {
	Items, Max int
}

func (e *BatchTooLargeError) Error() string {
	return fmt.Sprintf("batch of %d items exceeds maximum of %d", e.Items, e.Max)
}

// Processor runs the ingest pipeline.
type Processor struct {
	db       *database.DB
	hub      *fanout.Hub
	maxBatch int
}

// New creates a Processor. maxBatch caps array submissions.
func New(db *database.DB, hub *fanout.Hub, maxBatch int) *Processor {
	if maxBatch <= 0 {
		maxBatch = 100
	}
	return &Processor{db: db, hub: hub, maxBatch: maxBatch}
}

// Process handles one request body, which is either a single submission
// object or an array of them. It returns per-item results in submission
// order and whether the body was an array.
//
// A decode failure or an oversized batch fails the whole request; item
// level problems (validation, duplicates) are reported per item so one
// bad element cannot sink a batch.
func (p *Processor) Process(ctx context.Context, body []byte) ([]*Result, bool, error) {
	submissions, isBatch, err := decodeSubmissions(body)
	if err != nil {
		return nil, isBatch, err
	}
	if len(submissions) == 0 {
		return nil, isBatch, ErrEmptyBatch
	}
	if len(submissions) > p.maxBatch {
		return nil, isBatch, &BatchTooLargeError{Items: len(submissions), Max: p.maxBatch}
	}

	metrics.WebhookBatchSize.Observe(float64(len(submissions)))

	results := make([]*Result, len(submissions))
	for i, sub := range submissions {
		results[i] = p.processOne(ctx, sub)
		metrics.RecordWebhookOutcome(results[i].Status)
	}
	return results, isBatch, nil
}

// processOne validates, stores and fans out a single submission.
func (p *Processor) processOne(ctx context.Context, sub *models.WebhookSubmission) *Result {
	if verr := validation.ValidateStruct(sub); verr != nil {
		logging.Ctx(ctx).Debug().
			Str("user_id", sub.UserID).
			Str("error", verr.Error()).
			Msg("webhook submission rejected")
		return &Result{Status: StatusInvalid, Validation: verr}
	}

	event := sub.Event()
	err := p.db.InsertWebhookEvent(ctx, event)
	switch {
	case err == nil:
		// Insert committed; announcing the event is now safe.
		p.hub.PublishWebhook(event)
		metrics.FanoutMessagesPublished.WithLabelValues(fanout.MessageTypeWebhook).Inc()
		logging.Ctx(ctx).Info().
			Str("event_id", event.ID.String()).
			Str("user_id", event.UserID).
			Str("space_name", event.SpaceName).
			Msg("webhook event accepted")
		return &Result{Status: StatusCreated, Event: event}

	case errors.Is(err, database.ErrDuplicateEvent):
		existing, lookupErr := p.db.GetEventByFingerprint(ctx, event.Fingerprint)
		if lookupErr != nil {
			// Lost a race with the sweep or a purge between insert and
			// lookup. Report the duplicate without the stored event.
			logging.Ctx(ctx).Warn().Err(lookupErr).
				Msg("duplicate event vanished before lookup")
		}
		logging.Ctx(ctx).Debug().
			Str("user_id", sub.UserID).
			Msg("duplicate webhook event ignored")
		return &Result{Status: StatusDuplicate, Event: existing}

	default:
		logging.Ctx(ctx).Error().Err(err).Msg("failed to store webhook event")
		metrics.DBQueryErrors.WithLabelValues("insert_webhook").Inc()
		return &Result{Status: StatusError, Err: err}
	}
}

// decodeSubmissions parses a body that is either one submission object
// or an array of them, distinguished by the first non-space byte.
func decodeSubmissions(body []byte) ([]*models.WebhookSubmission, bool, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, false, errors.New("empty request body")
	}

	if trimmed[0] == '[' {
		var subs []*models.WebhookSubmission
		if err := json.Unmarshal(trimmed, &subs); err != nil {
			return nil, true, fmt.Errorf("malformed webhook batch: %w", err)
		}
		for i, sub := range subs {
			if sub == nil {
				return nil, true, fmt.Errorf("malformed webhook batch: item %d is null", i)
			}
		}
		return subs, true, nil
	}

	var sub models.WebhookSubmission
	if err := json.Unmarshal(trimmed, &sub); err != nil {
		return nil, false, fmt.Errorf("malformed webhook payload: %w", err)
	}
	return []*models.WebhookSubmission{&sub}, false, nil
}
