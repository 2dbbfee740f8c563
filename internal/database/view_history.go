// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/shopfront/internal/metrics"
	"github.com/tomtom215/shopfront/internal/recommend"
)

// RecordView appends a view to the user's history. When the user already
// holds viewHistoryCap entries, the oldest ones are evicted first so the
// count never exceeds the cap. Eviction and insert share one transaction.
func (db *DB) RecordView(ctx context.Context, entry recommend.ViewHistoryEntry) error {
	if entry.UserID <= 0 {
		return fmt.Errorf("record view: user id %d is not a known user", entry.UserID)
	}
	if entry.ViewTime.IsZero() {
		entry.ViewTime = db.now()
	}

	mu := db.userLock(entry.UserID)
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	err := retryOnConflict(ctx, "record_view", 3, func() error {
		return db.inTx(ctx, func(tx *sql.Tx) error {
			return db.appendViewHistory(ctx, tx, entry)
		})
	})
	metrics.RecordDBQuery("record_view", "view_history", time.Since(start), err)
	return err
}

// appendViewHistory evicts the user's oldest entries until one more fits
// under the cap, then inserts entry. Callers hold the user lock.
func (db *DB) appendViewHistory(ctx context.Context, tx *sql.Tx, entry recommend.ViewHistoryEntry) error {
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM view_history WHERE user_id = ?`, entry.UserID).Scan(&count); err != nil {
		return fmt.Errorf("count view history: %w", err)
	}

	if excess := count - db.viewHistoryCap + 1; excess > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM view_history
			WHERE rowid IN (
				SELECT rowid FROM view_history
				WHERE user_id = ?
				ORDER BY view_time ASC, rowid ASC
				LIMIT ?
			)`, entry.UserID, excess); err != nil {
			return fmt.Errorf("evict oldest views: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO view_history (user_id, item_id, view_time) VALUES (?, ?, ?)`,
		entry.UserID, entry.ItemID, entry.ViewTime.UTC()); err != nil {
		return fmt.Errorf("insert view: %w", err)
	}
	return nil
}

func (db *DB) userLock(userID int64) *sync.Mutex {
	mu, _ := db.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// GetViewedItemIDs returns the distinct items in a user's history, most
// recently viewed first.
func (db *DB) GetViewedItemIDs(ctx context.Context, userID int64) (ids []int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_viewed_items", "view_history", time.Since(start), err) }()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT item_id
		FROM view_history
		WHERE user_id = ?
		GROUP BY item_id
		ORDER BY MAX(view_time) DESC, item_id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query view history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan viewed item: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetTotalCount returns the number of view history rows across all users.
func (db *DB) GetTotalCount(ctx context.Context) (int64, error) {
	start := time.Now()
	var n int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM view_history`).Scan(&n)
	metrics.RecordDBQuery("count", "view_history", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("count view history: %w", err)
	}
	return n, nil
}

// CleanOlderThan deletes history rows viewed more than age ago and returns
// how many it removed.
func (db *DB) CleanOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := db.now().Add(-age).UTC()

	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `DELETE FROM view_history WHERE view_time < ?`, cutoff)
	metrics.RecordDBQuery("clean", "view_history", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("purge view history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge view history: %w", err)
	}
	return n, nil
}
