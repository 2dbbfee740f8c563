// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

// Package eventprocessor ingests storefront events over Watermill.
//
// The API publishes three event types, product views, searches and paid
// orders, to a message bus. A Watermill router consumes them and writes the
// raw events to DuckDB, appending views of known users to their capped view
// history. The popularity aggregation job later folds those raw events into
// weekly counters.
//
// # Transports
//
// Two transports are supported, selected by events.transport:
//
//   - channel: an in-process Watermill gochannel. Events are lost on restart.
//     Suitable for development and tests.
//   - nats: NATS JetStream through watermill-nats. The server is either
//     embedded (nats-server in-process, file storage under store_dir) or
//     external at events.nats.url. One stream captures storefront.>.
//
// # Delivery
//
// Handlers are at-least-once. The router retries transient failures with
// exponential backoff and routes messages that keep failing to the poison
// queue topic. Redeliveries are absorbed in two places: a processed-id marker
// in the cache, written only after the store accepted the event, and the
// event_id primary keys of the raw event tables.
// Malformed payloads are acknowledged and dropped with an error log.
//
// # Usage
//
//	bus, err := eventprocessor.NewBus(ctx, &cfg.Events, logger)
//	pub := eventprocessor.NewPublisher(bus.Publisher(), logger)
//	ing := eventprocessor.NewIngestor(db, store, logger)
//	proc := eventprocessor.NewProcessor(bus, ing, eventprocessor.RouterConfigFrom(&cfg.Events), logger)
//	go proc.Run(ctx)
//	_ = pub.PublishEvent(ctx, &eventprocessor.ProductViewed{...})
package eventprocessor
