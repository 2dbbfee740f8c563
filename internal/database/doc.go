// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

// Package database is the DuckDB storage layer of Shopfront.
//
// # Overview
//
// A single DB value owns the connection pool and implements every store
// interface the recommend package consumes: the catalog reader, the view
// history, the similarity edge store and the popularity store. It also holds
// the raw storefront events (views, searches, orders) that the popularity
// aggregation reads.
//
// # Files
//
//   - database.go: lifecycle, options and initialization
//   - database_schema.go: table and index creation
//   - migrations.go: versioned schema migrations
//   - database_connection.go: pool settings and transaction conflict retry
//   - catalog.go: products, variants and catalog lookups
//   - events.go: view, search and order ingestion
//   - popularity.go: weekly popularity counters and ranking
//   - similarity.go: the persisted similarity graph
//   - view_history.go: per-user capped view history
//   - seed.go: demo catalog for local runs
//
// # Time
//
// Every TIMESTAMP column holds UTC. Callers may pass any location, values are
// converted before they are written.
//
// # Concurrency
//
// DuckDB uses optimistic concurrency control, so writers that touch the same
// rows can fail with a transaction conflict. RecordView serializes per user
// inside the process and retries on conflict. Popularity aggregation and
// similarity replacement run in single transactions and are guarded by
// run locks in the recommend package.
//
// # Usage
//
//	db, err := database.New(&cfg.Database,
//		database.WithViewHistoryCap(cfg.Recommend.ViewHistoryCap),
//		database.WithPopularityLookbackWeeks(cfg.Recommend.PopularityLookbackWeeks))
//	if err != nil {
//		return err
//	}
//	defer db.Close()
package database
