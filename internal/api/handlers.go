// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package api

import (
	"time"

	"github.com/echotrace/echotrace/internal/config"
	"github.com/echotrace/echotrace/internal/database"
	"github.com/echotrace/echotrace/internal/fanout"
	"github.com/echotrace/echotrace/internal/ingest"
)

// Handlers carries the dependencies of every HTTP handler.
type Handlers struct {
	db        *database.DB
	hub       *fanout.Hub
	processor *ingest.Processor
	cfg       *config.Config
	version   string
	startTime time.Time
}

// NewHandlers wires the handler set. version is the build version shown
// in /health.
func NewHandlers(db *database.DB, hub *fanout.Hub, processor *ingest.Processor, cfg *config.Config, version string) *Handlers {
	return &Handlers{
		db:        db,
		hub:       hub,
		processor: processor,
		cfg:       cfg,
		version:   version,
		startTime: time.Now(),
	}
}
