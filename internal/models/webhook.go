// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is a stored download event as received from the browser
// extension and persisted by the event store.
//
// The canonical wire shape uses mediaUrl/mediaType (the earlier playlistUrl
// schema revision is not accepted). ID and CreatedAt are server-assigned;
// events are never updated after insert.
//
// IP and Fingerprint are internal-only: they are used for abuse triage and
// duplicate detection respectively, and are excluded from every response and
// fan-out message.
type WebhookEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	MediaURL  string    `json:"mediaUrl"`
	MediaType string    `json:"mediaType"`
	SpaceName string    `json:"spaceName"`
	TweetURL  string    `json:"tweetUrl"`
	IP        string    `json:"-"`
	City      string    `json:"city"`
	Region    string    `json:"region"`
	Country   string    `json:"country"`

	// Fingerprint is the duplicate-detection key computed from the configured
	// field tuple at insert time. Enforced unique at the storage layer.
	Fingerprint string `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

// WebhookSubmission is the inbound payload for POST /api/webhook, either as a
// single object or as an array element. Validation tags implement the
// required-field schema: the submitter ID must not be the "unknown" sentinel
// the extension sends before it has resolved an account, and both URLs must
// parse as absolute URIs.
type WebhookSubmission struct {
	UserID    string `json:"userId" validate:"required,ne=unknown"`
	MediaURL  string `json:"mediaUrl" validate:"required,url"`
	MediaType string `json:"mediaType" validate:"required"`
	SpaceName string `json:"spaceName" validate:"required"`
	TweetURL  string `json:"tweetUrl" validate:"required,url"`
	IP        string `json:"ip" validate:"required"`
	City      string `json:"city" validate:"required"`
	Region    string `json:"region" validate:"required"`
	Country   string `json:"country" validate:"required"`
}

// Event converts a validated submission into a WebhookEvent ready for the
// store. ID, Fingerprint and CreatedAt are left zero; the store assigns them.
func (s *WebhookSubmission) Event() *WebhookEvent {
	return &WebhookEvent{
		UserID:    s.UserID,
		MediaURL:  s.MediaURL,
		MediaType: s.MediaType,
		SpaceName: s.SpaceName,
		TweetURL:  s.TweetURL,
		IP:        s.IP,
		City:      s.City,
		Region:    s.Region,
		Country:   s.Country,
	}
}

// EventFilter narrows ListEvents queries.
type EventFilter struct {
	// UserID filters by submitter identifier when non-empty.
	UserID string

	// Since excludes events created before this instant when non-zero.
	Since time.Time

	// Limit caps the result size. The store clamps it to the caller's
	// maximum; zero means "use the default".
	Limit int
}
