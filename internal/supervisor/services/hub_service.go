// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package services

import (
	"context"
)

// ContextHub matches *fanout.Hub's RunWithContext method without
// importing the fanout package.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// FanoutHubService wraps the fanout hub as a supervised service. The
// hub's RunWithContext already implements the suture.Service pattern,
// so this wrapper delegates and provides a name for logging.
type FanoutHubService struct {
	hub  ContextHub
	name string
}

// NewFanoutHubService creates a new fanout hub service wrapper.
func NewFanoutHubService(hub ContextHub) *FanoutHubService {
	return &FanoutHubService{
		hub:  hub,
		name: "fanout-hub",
	}
}

// Serve implements suture.Service. Returns ctx.Err() on normal
// shutdown, after the hub has closed all subscriber channels.
func (f *FanoutHubService) Serve(ctx context.Context) error {
	return f.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for supervisor logging.
func (f *FanoutHubService) String() string {
	return f.name
}
