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

// Payment states of an order. Only paid orders count as purchases.
const (
	PaymentStatePending  = "pending"
	PaymentStatePaid     = "paid"
	PaymentStateFailed   = "failed"
	PaymentStateRefunded = "refunded"
)

// ViewEvent is a raw product page view.
type ViewEvent struct {
	EventID   string
	UserID    int64 // 0 for anonymous visitors
	ItemID    int64
	SessionID string
	ViewedAt  time.Time
}

// SearchEvent is a storefront search.
type SearchEvent struct {
	EventID    string
	UserID     int64
	Keyword    string
	SearchedAt time.Time
}

// Order is an order with its lines.
type Order struct {
	OrderID      int64
	UserID       int64
	PaymentState string
	PaidAt       *time.Time
	CreatedAt    time.Time
	Lines        []OrderLine
}

// OrderLine is one purchased item.
type OrderLine struct {
	ItemID   int64
	Quantity int
}

// IngestView stores a view event. The category is taken from the catalog
// at insert time (0 for unknown items). For a known user the view is also
// appended to the capped view history in the same transaction, so a
// redelivered event changes nothing and reports false.
func (db *DB) IngestView(ctx context.Context, ev ViewEvent) (bool, error) {
	if ev.ViewedAt.IsZero() {
		ev.ViewedAt = db.now()
	}
	if ev.UserID > 0 {
		mu := db.userLock(ev.UserID)
		mu.Lock()
		defer mu.Unlock()
	}

	var inserted bool
	start := time.Now()
	err := retryOnConflict(ctx, "ingest_view", 3, func() error {
		return db.inTx(ctx, func(tx *sql.Tx) error {
			res, err := tx.ExecContext(ctx, `
				INSERT INTO view_events (event_id, user_id, item_id, category_id, viewed_at, session_id)
				VALUES (?, ?, ?, COALESCE((SELECT category_id FROM products WHERE id = ?), 0), ?, ?)
				ON CONFLICT (event_id) DO NOTHING`,
				ev.EventID, ev.UserID, ev.ItemID, ev.ItemID, ev.ViewedAt.UTC(), nullString(ev.SessionID))
			if err != nil {
				return fmt.Errorf("insert view event %s: %w", ev.EventID, err)
			}
			inserted = affected(res)
			if !inserted || ev.UserID <= 0 {
				return nil
			}
			return db.appendViewHistory(ctx, tx, recommend.ViewHistoryEntry{
				UserID:   ev.UserID,
				ItemID:   ev.ItemID,
				ViewTime: ev.ViewedAt,
			})
		})
	})
	metrics.RecordDBQuery("ingest", "view_events", time.Since(start), err)
	if err != nil {
		return false, err
	}
	return inserted, nil
}

// InsertSearch stores a search. Repeated event ids are ignored.
func (db *DB) InsertSearch(ctx context.Context, ev SearchEvent) (bool, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO search_history (event_id, user_id, keyword, searched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (event_id) DO NOTHING`,
		ev.EventID, ev.UserID, ev.Keyword, ev.SearchedAt.UTC())
	metrics.RecordDBQuery("insert", "search_history", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("insert search %s: %w", ev.EventID, err)
	}
	return affected(res), nil
}

// GetRecentSearchKeyword returns the user's latest search keyword, or ""
// when the user never searched.
func (db *DB) GetRecentSearchKeyword(ctx context.Context, userID int64) (string, error) {
	start := time.Now()
	var keyword string
	err := db.conn.QueryRowContext(ctx, `
		SELECT keyword
		FROM search_history
		WHERE user_id = ?
		ORDER BY searched_at DESC
		LIMIT 1`, userID).Scan(&keyword)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
	}
	metrics.RecordDBQuery("recent_keyword", "search_history", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("query recent search: %w", err)
	}
	return keyword, nil
}

// UpsertOrder records an order and its lines in one transaction. A later
// event for the same order updates the payment state and keeps the first
// paid_at; lines are written once.
func (db *DB) UpsertOrder(ctx context.Context, o Order) error {
	if len(o.Lines) == 0 {
		return fmt.Errorf("order %d has no lines", o.OrderID)
	}
	createdAt := o.CreatedAt
	if createdAt.IsZero() {
		createdAt = db.now()
	}
	var paidAt any
	if o.PaidAt != nil {
		paidAt = o.PaidAt.UTC()
	}

	start := time.Now()
	err := db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO orders (order_id, user_id, payment_state, paid_at, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (order_id) DO UPDATE SET
				payment_state = excluded.payment_state,
				paid_at = COALESCE(orders.paid_at, excluded.paid_at)`,
			o.OrderID, o.UserID, o.PaymentState, paidAt, createdAt.UTC()); err != nil {
			return fmt.Errorf("upsert order %d: %w", o.OrderID, err)
		}

		for i, line := range o.Lines {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO order_lines (order_id, line_no, item_id, category_id, quantity)
				VALUES (?, ?, ?, COALESCE((SELECT category_id FROM products WHERE id = ?), 0), ?)
				ON CONFLICT (order_id, line_no) DO NOTHING`,
				o.OrderID, i+1, line.ItemID, line.ItemID, line.Quantity); err != nil {
				return fmt.Errorf("insert line %d of order %d: %w", i+1, o.OrderID, err)
			}
		}
		return nil
	})
	metrics.RecordDBQuery("upsert", "orders", time.Since(start), err)
	return err
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func affected(res sql.Result) bool {
	n, err := res.RowsAffected()
	return err == nil && n > 0
}
