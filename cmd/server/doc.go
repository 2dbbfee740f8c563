// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

/*
Package main is the entry point for the Shopfront server.

Shopfront serves product recommendations for a storefront: content-based
neighbors from a nightly similarity graph, collaborative candidates from
shopper view history and weekly category popularity, blended and cached.

# Application Architecture

	RootSupervisor ("shopfront")
	├── JobsSupervisor ("jobs-layer")
	│   └── job-scheduler (similarity rebuild, popularity aggregation, view-history cleanup)
	├── EventsSupervisor ("events-layer")
	│   └── event-processor (storefront events into DuckDB)
	└── APISupervisor ("api-layer")
	    └── http-server

Component initialization order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog
 3. Database: DuckDB, optionally seeded with a demo catalog
 4. Cache: memory, Redis or Badger behind a circuit breaker
 5. Recommendation service
 6. Event pipeline: Watermill over an in-process channel or NATS JetStream
 7. Job registry and cron scheduler
 8. HTTP API with JWT + casbin on the admin routes
 9. Supervisor tree; the HTTP server joins once the event router is consuming

# Admin tokens

	JWT_SECRET=... ./shopfront -issue-token ops -roles admin

prints a bearer token for POST /api/v1/admin/jobs/{job}.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor drains the HTTP
server, stops the scheduler (running jobs are canceled and roll back) and
the event router; then the bus, cache and database are closed.
*/
package main
