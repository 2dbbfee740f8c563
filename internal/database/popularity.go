// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/shopfront/internal/metrics"
	"github.com/tomtom215/shopfront/internal/recommend"
)

// GetPopularItems ranks items by view_count + purchase_count summed over the
// current and the previous popularityWeeks-1 weekly periods. Category 0
// ranks across all categories. Ties go to the lower id.
func (db *DB) GetPopularItems(ctx context.Context, categoryID int64, limit int) (ids []int64, err error) {
	if limit <= 0 {
		return nil, nil
	}
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_popular_items", "popularity_stats", time.Since(start), err) }()

	since := recommend.WeekStart(db.now()).AddDate(0, 0, -7*(db.popularityWeeks-1))

	query := `
		SELECT item_id
		FROM popularity_stats
		WHERE time_period >= ?`
	args := []any{since}
	if categoryID > 0 {
		query += ` AND category_id = ?`
		args = append(args, categoryID)
	}
	query += `
		GROUP BY item_id
		ORDER BY SUM(view_count + purchase_count) DESC, item_id ASC
		LIMIT ?`
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query popular items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan popular item: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InAggregationTx runs fn in one transaction. Any error from fn rolls back
// every counter change it made.
func (db *DB) InAggregationTx(ctx context.Context, fn func(tx recommend.AggregationTx) error) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&aggregationTx{tx: tx})
	})
}

// aggregationTx is the transactional view used by the popularity aggregator.
type aggregationTx struct {
	tx *sql.Tx
}

// CountViews counts view events in [from, to) per (item, category).
func (a *aggregationTx) CountViews(ctx context.Context, from, to time.Time) ([]recommend.ItemCount, error) {
	return a.itemCounts(ctx, "count_views", "view_events", `
		SELECT item_id, category_id, COUNT(*)
		FROM view_events
		WHERE viewed_at >= ? AND viewed_at < ?
		GROUP BY item_id, category_id
		ORDER BY item_id, category_id`, from, to)
}

// SumPurchases sums order line quantities of paid orders whose payment
// landed in [from, to).
func (a *aggregationTx) SumPurchases(ctx context.Context, from, to time.Time) ([]recommend.ItemCount, error) {
	return a.itemCounts(ctx, "sum_purchases", "order_lines", `
		SELECT l.item_id, l.category_id, SUM(l.quantity)
		FROM orders o
		JOIN order_lines l ON l.order_id = o.order_id
		WHERE o.payment_state = ?
		  AND o.paid_at >= ? AND o.paid_at < ?
		GROUP BY l.item_id, l.category_id
		ORDER BY l.item_id, l.category_id`, PaymentStatePaid, from, to)
}

func (a *aggregationTx) itemCounts(ctx context.Context, op, table, query string, args ...any) (counts []recommend.ItemCount, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery(op, table, time.Since(start), err) }()

	for i, arg := range args {
		if t, ok := arg.(time.Time); ok {
			args[i] = t.UTC()
		}
	}

	rows, err := a.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c recommend.ItemCount
		if err := rows.Scan(&c.ItemID, &c.CategoryID, &c.Count); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", table, err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// UpsertView adds delta to the view counter, creating the row with a zero
// purchase count on first occurrence.
func (a *aggregationTx) UpsertView(ctx context.Context, itemID, categoryID int64, period time.Time, delta int64) error {
	_, err := a.tx.ExecContext(ctx, `
		INSERT INTO popularity_stats (item_id, category_id, time_period, view_count, purchase_count)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT (item_id, category_id, time_period)
		DO UPDATE SET view_count = popularity_stats.view_count + excluded.view_count`,
		itemID, categoryID, period.UTC(), delta)
	if err != nil {
		return fmt.Errorf("upsert view count: %w", err)
	}
	return nil
}

// UpsertPurchase is the purchase counterpart of UpsertView.
func (a *aggregationTx) UpsertPurchase(ctx context.Context, itemID, categoryID int64, period time.Time, delta int64) error {
	_, err := a.tx.ExecContext(ctx, `
		INSERT INTO popularity_stats (item_id, category_id, time_period, view_count, purchase_count)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT (item_id, category_id, time_period)
		DO UPDATE SET purchase_count = popularity_stats.purchase_count + excluded.purchase_count`,
		itemID, categoryID, period.UTC(), delta)
	if err != nil {
		return fmt.Errorf("upsert purchase count: %w", err)
	}
	return nil
}

// GetPopularityStat returns the counters of one (item, category, period) row.
func (db *DB) GetPopularityStat(ctx context.Context, itemID, categoryID int64, period time.Time) (*recommend.PopularityStat, error) {
	stat := recommend.PopularityStat{ItemID: itemID, CategoryID: categoryID, TimePeriod: period.UTC()}
	err := db.conn.QueryRowContext(ctx, `
		SELECT view_count, purchase_count
		FROM popularity_stats
		WHERE item_id = ? AND category_id = ? AND time_period = ?`,
		itemID, categoryID, period.UTC()).Scan(&stat.ViewCount, &stat.PurchaseCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("popularity stat for item %d: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get popularity stat: %w", err)
	}
	return &stat, nil
}
