// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

// Package jobs runs the named background jobs of the service: the similarity
// rebuild, the popularity aggregation and the view history cleanup.
//
// A Registry is shared by the cron scheduler (supervisor/services) and the
// admin API, so a job triggered by hand and a scheduled run of the same job
// never overlap: the second caller gets ErrJobRunning. Each run gets the
// job's timeout and is recorded in metrics and in the status returned by
// Statuses.
package jobs
