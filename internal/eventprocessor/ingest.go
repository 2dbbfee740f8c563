// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package eventprocessor

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shopfront/internal/cache"
	"github.com/tomtom215/shopfront/internal/database"
	"github.com/tomtom215/shopfront/internal/logging"
	"github.com/tomtom215/shopfront/internal/metrics"
)

// EventStore persists raw storefront events.
type EventStore interface {
	IngestView(ctx context.Context, ev database.ViewEvent) (bool, error)
	InsertSearch(ctx context.Context, ev database.SearchEvent) (bool, error)
	UpsertOrder(ctx context.Context, o database.Order) error
}

// DefaultDedupTTL is how long a processed event id is remembered in the cache.
const DefaultDedupTTL = 24 * time.Hour

// Ingestor holds the Watermill handlers that write storefront events to the
// store.
type Ingestor struct {
	store    EventStore
	dedup    cache.Store // optional
	dedupTTL time.Duration
	logger   zerolog.Logger
	faultLog rate.Sometimes
}

// NewIngestor creates the handlers. dedup may be nil; the store's event id
// keys still absorb redeliveries of views and searches.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewIngestor(store EventStore, dedup cache.Store, logger zerolog.Logger) *Ingestor {
	return &Ingestor{
		store:    store,
		dedup:    dedup,
		dedupTTL: DefaultDedupTTL,
		logger:   logger.With().Str("component", "events").Logger(),
		faultLog: rate.Sometimes{First: 3, Interval: 30 * time.Second},
	}
}

// HandleProductViewed stores a view and appends it to the user's history.
func (i *Ingestor) HandleProductViewed(msg *message.Message) error {
	var ev ProductViewed
	return i.handle(msg, &ev, func(ctx context.Context) error {
		_, err := i.store.IngestView(ctx, database.ViewEvent{
			EventID:   ev.EventID,
			UserID:    ev.UserID,
			ItemID:    ev.ItemID,
			SessionID: ev.SessionID,
			ViewedAt:  ev.ViewedAt,
		})
		return err
	})
}

// HandleSearchPerformed stores a search keyword.
func (i *Ingestor) HandleSearchPerformed(msg *message.Message) error {
	var ev SearchPerformed
	return i.handle(msg, &ev, func(ctx context.Context) error {
		_, err := i.store.InsertSearch(ctx, database.SearchEvent{
			EventID:    ev.EventID,
			UserID:     ev.UserID,
			Keyword:    ev.Keyword,
			SearchedAt: ev.SearchedAt,
		})
		return err
	})
}

// HandleOrderPaid stores a paid order and its lines.
func (i *Ingestor) HandleOrderPaid(msg *message.Message) error {
	var ev OrderPaid
	return i.handle(msg, &ev, func(ctx context.Context) error {
		lines := make([]database.OrderLine, len(ev.Lines))
		for n, l := range ev.Lines {
			lines[n] = database.OrderLine{ItemID: l.ItemID, Quantity: l.Quantity}
		}
		paidAt := ev.PaidAt
		return i.store.UpsertOrder(ctx, database.Order{
			OrderID:      ev.OrderID,
			UserID:       ev.UserID,
			PaymentState: database.PaymentStatePaid,
			PaidAt:       &paidAt,
			CreatedAt:    ev.PaidAt,
			Lines:        lines,
		})
	})
}

// handle decodes msg into event, skips ids already processed and runs
// apply. Malformed payloads are acknowledged and dropped; apply errors are
// returned so the router retries. The id is marked processed only after
// apply succeeded, so a crash mid-way leads to redelivery, not loss.
func (i *Ingestor) handle(msg *message.Message, event Event, apply func(ctx context.Context) error) error {
	ctx := msg.Context()
	if id := middleware.MessageCorrelationID(msg); id != "" {
		ctx = logging.ContextWithCorrelationID(ctx, id)
	}
	logger := logging.Enrich(ctx, i.logger)

	if err := DeserializeEvent(msg.Payload, event); err != nil {
		metrics.RecordEvent(event.Type(), err)
		logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed event")
		return nil
	}

	key := dedupKey(event.ID())
	if i.processed(ctx, key) {
		logger.Debug().Str("event_id", event.ID()).Str("type", event.Type()).Msg("Skipping duplicate event")
		return nil
	}

	if err := apply(ctx); err != nil {
		metrics.RecordEvent(event.Type(), err)
		return fmt.Errorf("ingest %s %s: %w", event.Type(), event.ID(), err)
	}

	i.markProcessed(ctx, key)
	metrics.RecordEvent(event.Type(), nil)
	logger.Debug().Str("event_id", event.ID()).Str("type", event.Type()).Msg("Event ingested")
	return nil
}

func dedupKey(eventID string) string {
	return "event:" + eventID
}

// processed reports whether key was marked. A cache fault lets the event
// through.
func (i *Ingestor) processed(ctx context.Context, key string) bool {
	if i.dedup == nil {
		return false
	}
	_, found, err := i.dedup.Get(ctx, key)
	if err != nil {
		i.cacheFault(key, "get", err)
		return false
	}
	return found
}

func (i *Ingestor) markProcessed(ctx context.Context, key string) {
	if i.dedup == nil {
		return
	}
	stored, err := i.dedup.SetNX(context.WithoutCancel(ctx), key, []byte{'1'}, i.dedupTTL)
	if err != nil {
		i.cacheFault(key, "setnx", err)
		return
	}
	if !stored {
		i.logger.Debug().Str("key", key).Msg("Event was processed concurrently by another consumer")
	}
}

func (i *Ingestor) cacheFault(key, op string, err error) {
	metrics.RecordCacheFault(key, op)
	i.faultLog.Do(func() {
		i.logger.Warn().Err(err).Str("operation", op).Msg("Event dedup cache unavailable, processing without it")
	})
}
