// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package eventprocessor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/cache"
	"github.com/tomtom215/shopfront/internal/database"
)

// fakeEventStore records what the ingestor wrote. failures makes the next
// n calls fail.
type fakeEventStore struct {
	mu       sync.Mutex
	views    []database.ViewEvent
	searches []database.SearchEvent
	orders   []database.Order
	failures int
}

var errStoreDown = errors.New("store down")

func (s *fakeEventStore) fail() bool {
	if s.failures > 0 {
		s.failures--
		return true
	}
	return false
}

func (s *fakeEventStore) IngestView(_ context.Context, ev database.ViewEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail() {
		return false, errStoreDown
	}
	s.views = append(s.views, ev)
	return true, nil
}

func (s *fakeEventStore) InsertSearch(_ context.Context, ev database.SearchEvent) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail() {
		return false, errStoreDown
	}
	s.searches = append(s.searches, ev)
	return true, nil
}

func (s *fakeEventStore) UpsertOrder(_ context.Context, o database.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail() {
		return errStoreDown
	}
	s.orders = append(s.orders, o)
	return nil
}

func (s *fakeEventStore) counts() (views, searches, orders int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views), len(s.searches), len(s.orders)
}

// brokenCache fails every operation.
type brokenCache struct{ cache.Store }

func (brokenCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, cache.ErrCircuitOpen
}

func (brokenCache) SetNX(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, cache.ErrCircuitOpen
}

func newMessage(t *testing.T, ev Event) *message.Message {
	t.Helper()
	data, err := SerializeEvent(ev)
	if err != nil {
		t.Fatalf("SerializeEvent: %v", err)
	}
	return message.NewMessage(ev.ID(), data)
}

func newTestCache(t *testing.T) *cache.MemoryStore {
	t.Helper()
	store := cache.NewMemoryStore(100)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestHandleProductViewed(t *testing.T) {
	store := &fakeEventStore{}
	ing := NewIngestor(store, newTestCache(t), zerolog.Nop())

	ev := &ProductViewed{EventID: "v1", UserID: 3, ItemID: 8, SessionID: "s", ViewedAt: testTime}
	if err := ing.HandleProductViewed(newMessage(t, ev)); err != nil {
		t.Fatalf("HandleProductViewed: %v", err)
	}

	if len(store.views) != 1 {
		t.Fatalf("views = %d, want 1", len(store.views))
	}
	got := store.views[0]
	if got.EventID != "v1" || got.UserID != 3 || got.ItemID != 8 || got.SessionID != "s" || !got.ViewedAt.Equal(testTime) {
		t.Errorf("stored view = %+v", got)
	}
}

func TestHandleOrderPaid(t *testing.T) {
	store := &fakeEventStore{}
	ing := NewIngestor(store, nil, zerolog.Nop())

	ev := &OrderPaid{EventID: "o1", OrderID: 77, UserID: 3, PaidAt: testTime, Lines: []OrderLine{{ItemID: 1, Quantity: 2}, {ItemID: 5, Quantity: 1}}}
	if err := ing.HandleOrderPaid(newMessage(t, ev)); err != nil {
		t.Fatalf("HandleOrderPaid: %v", err)
	}

	if len(store.orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(store.orders))
	}
	o := store.orders[0]
	if o.PaymentState != database.PaymentStatePaid || o.PaidAt == nil || !o.PaidAt.Equal(testTime) {
		t.Errorf("order payment = %q at %v", o.PaymentState, o.PaidAt)
	}
	if len(o.Lines) != 2 || o.Lines[1].ItemID != 5 {
		t.Errorf("order lines = %+v", o.Lines)
	}
}

func TestHandle_SkipsProcessedEvents(t *testing.T) {
	store := &fakeEventStore{}
	ing := NewIngestor(store, newTestCache(t), zerolog.Nop())

	ev := &SearchPerformed{EventID: "s1", UserID: 3, Keyword: "lamp", SearchedAt: testTime}
	for i := 0; i < 3; i++ {
		if err := ing.HandleSearchPerformed(newMessage(t, ev)); err != nil {
			t.Fatalf("HandleSearchPerformed #%d: %v", i, err)
		}
	}

	if _, searches, _ := store.counts(); searches != 1 {
		t.Errorf("searches stored = %d, want 1", searches)
	}
}

func TestHandle_FailureIsRetryable(t *testing.T) {
	store := &fakeEventStore{failures: 1}
	ing := NewIngestor(store, newTestCache(t), zerolog.Nop())

	msg := newMessage(t, &ProductViewed{EventID: "v1", ItemID: 8, ViewedAt: testTime})
	if err := ing.HandleProductViewed(msg); !errors.Is(err, errStoreDown) {
		t.Fatalf("first attempt error = %v, want errStoreDown", err)
	}
	// A failed attempt must not mark the event as processed.
	if err := ing.HandleProductViewed(msg); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if views, _, _ := store.counts(); views != 1 {
		t.Errorf("views stored = %d, want 1", views)
	}
}

func TestHandle_DropsMalformed(t *testing.T) {
	store := &fakeEventStore{}
	ing := NewIngestor(store, nil, zerolog.Nop())

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `view`},
		{"missing fields", `{"event_id":"v1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := message.NewMessage("m", []byte(tt.payload))
			if err := ing.HandleProductViewed(msg); err != nil {
				t.Errorf("malformed payload returned %v, want nil (acked)", err)
			}
		})
	}
	if views, _, _ := store.counts(); views != 0 {
		t.Errorf("views stored = %d, want 0", views)
	}
}

func TestHandle_CacheFaultStillIngests(t *testing.T) {
	store := &fakeEventStore{}
	ing := NewIngestor(store, brokenCache{}, zerolog.Nop())

	ev := &ProductViewed{EventID: "v1", ItemID: 8, ViewedAt: testTime}
	if err := ing.HandleProductViewed(newMessage(t, ev)); err != nil {
		t.Fatalf("HandleProductViewed: %v", err)
	}
	if views, _, _ := store.counts(); views != 1 {
		t.Errorf("views stored = %d, want 1", views)
	}
}
