// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

/*
Package supervisor provides process supervision for Echotrace using suture v4.

The tree organizes long-running services into layers for failure isolation:

	RootSupervisor ("echotrace")
	├── MessagingSupervisor ("messaging-layer")
	│   └── FanoutHubService
	├── MaintenanceSupervisor ("maintenance-layer")
	│   └── Sweeper (if SWEEP_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash in the sweep scheduler never takes down live streams, and a hub
failure never stops the HTTP layer from answering feed queries. Crashed
services restart with exponential backoff per suture's failure counter.

Services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return nil to stop cleanly, an error to be restarted; on context
cancellation return promptly.

DuckDB is intentionally not supervised: it is an embedded library whose
connections the database package manages, and a storage crash would
require a process restart anyway.
*/
package supervisor
