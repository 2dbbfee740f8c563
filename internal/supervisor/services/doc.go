// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

/*
Package services provides suture.Service wrappers for Shopfront components.

Each wrapper translates a component's lifecycle into suture's context-aware
Serve method and returns ctx.Err() after a clean stop, so the supervisor
only restarts on real failures.

  - HTTPServerService: *http.Server with graceful Shutdown on cancellation
  - SchedulerService: robfig/cron in UTC driving the job registry
    (similarity rebuild, popularity aggregation, view-history cleanup),
    with optional run-on-startup
  - EventProcessorService: the Watermill event router; an early return is
    a failure so the router is rebuilt and resubscribed

Usage:

	tree.AddJobService(scheduler)
	tree.AddEventService(services.NewEventProcessorService(processor, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
*/
package services
