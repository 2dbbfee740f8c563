// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

// Package metrics declares the Prometheus collectors exported on /metrics and
// small Record* helpers so call sites never touch label ordering directly.
//
// Families:
//   - shopfront_api_*: HTTP request count and latency
//   - shopfront_db_*: DuckDB query latency and errors
//   - shopfront_cache_*: hits, misses and faults per key family
//   - shopfront_circuit_breaker_*: breaker state and transitions
//   - shopfront_recommend_*: served recommendations and candidate sources
//   - shopfront_similarity_*, shopfront_popularity_*: background job runs
//   - shopfront_events_*: storefront event ingestion
//
// All collectors register with the default registry via promauto.
package metrics
