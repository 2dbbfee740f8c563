// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

/*
Package supervisor provides process supervision for Shopfront using suture v4.

The supervisor tree manages every long-running service with Erlang/OTP-style
restart, failure isolation and graceful shutdown:

	RootSupervisor ("shopfront")
	├── JobsSupervisor ("jobs-layer")
	│   └── SchedulerService (cron: similarity rebuild, popularity aggregation, view-history cleanup)
	├── EventsSupervisor ("events-layer")
	│   └── EventProcessorService (if events.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning ctx.Err() after cancellation is a clean stop. Any other error is a
failure: suture restarts the service and enters FailureBackoff once
FailureThreshold is exceeded (failures decay by FailureDecay per second).

Supervisor events (restarts, backoff, timeouts) are logged through
sutureslog, fed by the zerolog-backed slog handler from internal/logging.

The adapters for the concrete services live in the services subpackage.
*/
package supervisor
