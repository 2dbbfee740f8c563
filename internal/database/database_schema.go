// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

/*
database_schema.go - Database Schema Management

Tables:
  - categories, brands, products, product_variants: the storefront catalog,
    read by the recommendation engine (one default variant per product)
  - view_events, search_history, orders, order_lines: raw storefront events
    written by the ingestion consumer
  - view_history: per-user recent views, capped FIFO, purged after retention
  - popularity_stats: weekly (Monday UTC) view and purchase counters
  - similarity_edges: canonical item pairs (low < high), fully replaced on
    every similarity rebuild

All timestamps are TIMESTAMP values holding UTC.

product_variants, similarity_edges and view_history carry no primary key:
their rows are deleted and re-inserted inside single transactions, which
DuckDB's unique indexes reject. Their uniqueness is maintained by the
writers.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS brands (
		id BIGINT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGINT PRIMARY KEY,
		category_id BIGINT NOT NULL,
		brand_id BIGINT NOT NULL DEFAULT 0,
		name TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
	)`,
	`CREATE TABLE IF NOT EXISTS product_variants (
		id BIGINT NOT NULL,
		product_id BIGINT NOT NULL,
		sku TEXT,
		price DOUBLE NOT NULL CHECK (price >= 0),
		is_default BOOLEAN NOT NULL DEFAULT false
	)`,
	`CREATE TABLE IF NOT EXISTS view_events (
		event_id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL DEFAULT 0,
		item_id BIGINT NOT NULL,
		category_id BIGINT NOT NULL,
		viewed_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS search_history (
		event_id TEXT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		keyword TEXT NOT NULL,
		searched_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL DEFAULT 0,
		payment_state TEXT NOT NULL,
		paid_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_lines (
		order_id BIGINT NOT NULL,
		line_no INTEGER NOT NULL,
		item_id BIGINT NOT NULL,
		category_id BIGINT NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		PRIMARY KEY (order_id, line_no)
	)`,
	`CREATE TABLE IF NOT EXISTS view_history (
		user_id BIGINT NOT NULL,
		item_id BIGINT NOT NULL,
		view_time TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS popularity_stats (
		item_id BIGINT NOT NULL,
		category_id BIGINT NOT NULL,
		time_period TIMESTAMP NOT NULL,
		view_count BIGINT NOT NULL DEFAULT 0,
		purchase_count BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (item_id, category_id, time_period)
	)`,
	`CREATE TABLE IF NOT EXISTS similarity_edges (
		item_id_low BIGINT NOT NULL,
		item_id_high BIGINT NOT NULL,
		score DOUBLE NOT NULL,
		CHECK (item_id_low < item_id_high),
		CHECK (score > 0 AND score <= 1)
	)`,
}

// createIndexes creates the secondary indexes used by the read paths.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_variants_product ON product_variants(product_id)`,
		`CREATE INDEX IF NOT EXISTS idx_view_events_time ON view_events(viewed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_search_history_user ON search_history(user_id, searched_at)`,
		`CREATE INDEX IF NOT EXISTS idx_view_history_user ON view_history(user_id, view_time)`,
		`CREATE INDEX IF NOT EXISTS idx_view_history_time ON view_history(view_time)`,
		`CREATE INDEX IF NOT EXISTS idx_popularity_period ON popularity_stats(time_period, category_id)`,
		`CREATE INDEX IF NOT EXISTS idx_similarity_low ON similarity_edges(item_id_low)`,
		`CREATE INDEX IF NOT EXISTS idx_similarity_high ON similarity_edges(item_id_high)`,
	}
	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
