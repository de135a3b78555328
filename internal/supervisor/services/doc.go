// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

// Package services provides suture.Service wrappers for Echotrace's
// long-running components: the HTTP server and the fanout hub. The
// deduplication sweeper implements suture.Service directly and needs
// no wrapper here.
package services
