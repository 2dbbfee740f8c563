// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package database

import (
	"context"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/shopfront/internal/recommend"
)

func TestIngestView_Dedup(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedProducts(t, db, product(1, 3, "Copper Pan", 60))

	ev := ViewEvent{EventID: "ev-1", UserID: 4, ItemID: 1, ViewedAt: time.Now()}
	inserted, err := db.IngestView(ctx, ev)
	checkNoError(t, err)
	if !inserted {
		t.Error("first insert reported duplicate")
	}

	inserted, err = db.IngestView(ctx, ev)
	checkNoError(t, err)
	if inserted {
		t.Error("repeated event id was inserted again")
	}

	var category int64
	checkNoError(t, db.conn.QueryRow(`SELECT category_id FROM view_events WHERE event_id = 'ev-1'`).Scan(&category))
	if category != 3 {
		t.Errorf("category_id = %d, want 3 (taken from catalog)", category)
	}

	total, err := db.GetTotalCount(ctx)
	checkNoError(t, err)
	if total != 1 {
		t.Errorf("view history rows = %d, want 1 after a redelivered event", total)
	}
}

func TestIngestView_AnonymousSkipsHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	inserted, err := db.IngestView(ctx, ViewEvent{EventID: "ev-2", ItemID: 42, ViewedAt: time.Now()})
	checkNoError(t, err)
	if !inserted {
		t.Error("anonymous view was not stored")
	}

	var category int64
	checkNoError(t, db.conn.QueryRow(`SELECT category_id FROM view_events WHERE event_id = 'ev-2'`).Scan(&category))
	if category != 0 {
		t.Errorf("category_id = %d, want 0 for an unknown item", category)
	}

	total, err := db.GetTotalCount(ctx)
	checkNoError(t, err)
	if total != 0 {
		t.Errorf("view history rows = %d, want 0 for anonymous views", total)
	}
}

func TestIngestView_RespectsCap(t *testing.T) {
	db := setupTestDB(t, WithViewHistoryCap(2))
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	for i := int64(1); i <= 4; i++ {
		_, err := db.IngestView(ctx, ViewEvent{
			EventID: fmt.Sprintf("ev-%d", i), UserID: 8, ItemID: i, ViewedAt: base.Add(time.Duration(i) * time.Minute),
		})
		checkNoError(t, err)
	}

	ids, err := db.GetViewedItemIDs(ctx, 8)
	checkNoError(t, err)
	if want := []int64{4, 3}; !slices.Equal(ids, want) {
		t.Errorf("history = %v, want %v", ids, want)
	}

	var events int
	checkNoError(t, db.conn.QueryRow(`SELECT COUNT(*) FROM view_events`).Scan(&events))
	if events != 4 {
		t.Errorf("view_events = %d, want all 4 raw events kept", events)
	}
}

func TestGetRecentSearchKeyword(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	keyword, err := db.GetRecentSearchKeyword(ctx, 1)
	checkNoError(t, err)
	if keyword != "" {
		t.Errorf("keyword without searches = %q, want empty", keyword)
	}

	for i, kw := range []string{"lamp", "rug", "chair"} {
		_, err := db.InsertSearch(ctx, SearchEvent{
			EventID: kw, UserID: 1, Keyword: kw, SearchedAt: base.Add(time.Duration(i) * time.Hour),
		})
		checkNoError(t, err)
	}
	_, err = db.InsertSearch(ctx, SearchEvent{EventID: "other", UserID: 2, Keyword: "pan", SearchedAt: base.Add(time.Hour * 9)})
	checkNoError(t, err)

	keyword, err = db.GetRecentSearchKeyword(ctx, 1)
	checkNoError(t, err)
	if keyword != "chair" {
		t.Errorf("GetRecentSearchKeyword = %q, want chair", keyword)
	}
}

func TestUpsertOrder_PaymentTransitions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	paidAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	order := Order{
		OrderID:      1,
		UserID:       3,
		PaymentState: PaymentStatePending,
		Lines:        []OrderLine{{ItemID: 5, Quantity: 2}},
	}
	checkNoError(t, db.UpsertOrder(ctx, order))

	order.PaymentState = PaymentStatePaid
	order.PaidAt = &paidAt
	checkNoError(t, db.UpsertOrder(ctx, order))

	later := paidAt.Add(time.Hour)
	order.PaidAt = &later
	checkNoError(t, db.UpsertOrder(ctx, order))

	var state string
	var gotPaid time.Time
	checkNoError(t, db.conn.QueryRow(`SELECT payment_state, paid_at FROM orders WHERE order_id = 1`).Scan(&state, &gotPaid))
	if state != PaymentStatePaid {
		t.Errorf("payment_state = %q, want paid", state)
	}
	if !gotPaid.Equal(paidAt) {
		t.Errorf("paid_at = %v, want first paid time %v", gotPaid, paidAt)
	}

	var lines int
	checkNoError(t, db.conn.QueryRow(`SELECT COUNT(*) FROM order_lines WHERE order_id = 1`).Scan(&lines))
	if lines != 1 {
		t.Errorf("order_lines = %d, want 1", lines)
	}
}

func TestUpsertOrder_RequiresLines(t *testing.T) {
	db := setupTestDB(t)
	checkError(t, db.UpsertOrder(context.Background(), Order{OrderID: 1, PaymentState: PaymentStatePaid}))
}

func TestSumPurchases_OnlyPaidInWindow(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedProducts(t, db, product(5, 2, "Desk Lamp", 20))

	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	inDay := day.Add(10 * time.Hour)
	dayBefore := day.Add(-time.Hour)

	orders := []Order{
		{OrderID: 1, PaymentState: PaymentStatePaid, PaidAt: &inDay, Lines: []OrderLine{{ItemID: 5, Quantity: 2}}},
		{OrderID: 2, PaymentState: PaymentStatePaid, PaidAt: &inDay, Lines: []OrderLine{{ItemID: 5, Quantity: 1}}},
		{OrderID: 3, PaymentState: PaymentStatePending, Lines: []OrderLine{{ItemID: 5, Quantity: 7}}},
		{OrderID: 4, PaymentState: PaymentStateRefunded, PaidAt: &inDay, Lines: []OrderLine{{ItemID: 5, Quantity: 4}}},
		{OrderID: 5, PaymentState: PaymentStatePaid, PaidAt: &dayBefore, Lines: []OrderLine{{ItemID: 5, Quantity: 9}}},
	}
	for _, o := range orders {
		checkNoError(t, db.UpsertOrder(ctx, o))
	}

	var counts []recommend.ItemCount
	err := db.InAggregationTx(ctx, func(tx recommend.AggregationTx) error {
		var err error
		counts, err = tx.SumPurchases(ctx, day, day.AddDate(0, 0, 1))
		return err
	})
	checkNoError(t, err)

	if len(counts) != 1 {
		t.Fatalf("SumPurchases returned %d rows, want 1: %v", len(counts), counts)
	}
	if c := counts[0]; c.ItemID != 5 || c.CategoryID != 2 || c.Count != 3 {
		t.Errorf("SumPurchases = %+v, want item 5 category 2 count 3", c)
	}
}
