// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/cache"
	"github.com/tomtom215/shopfront/internal/config"
	"github.com/tomtom215/shopfront/internal/eventprocessor"
)

// EventComponents holds the event pipeline for lifecycle management.
type EventComponents struct {
	Bus       *eventprocessor.Bus
	Publisher *eventprocessor.Publisher
	Processor *eventprocessor.Processor
}

// initEvents builds the bus, publisher and processor. It returns nil when
// event ingestion is disabled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEvents(ctx context.Context, cfg *config.EventsConfig, store eventprocessor.EventStore, dedup cache.Store, logger zerolog.Logger) (*EventComponents, error) {
	if !cfg.Enabled {
		logger.Info().Msg("Event ingestion disabled (EVENTS_ENABLED=false)")
		return nil, nil
	}

	bus, err := eventprocessor.NewBus(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create event bus: %w", err)
	}

	ingestor := eventprocessor.NewIngestor(store, dedup, logger)
	components := &EventComponents{
		Bus:       bus,
		Publisher: eventprocessor.NewPublisher(bus.Publisher(), logger),
		Processor: eventprocessor.NewProcessor(bus, ingestor, eventprocessor.RouterConfigFrom(cfg), logger),
	}
	logger.Info().Str("transport", bus.Transport()).Msg("Event pipeline initialized")
	return components, nil
}

// HealthChecks lists the components reported by /api/v1/health.
func (c *EventComponents) HealthChecks() []eventprocessor.HealthCheckable {
	if c == nil {
		return nil
	}
	return []eventprocessor.HealthCheckable{c.Processor}
}

// Shutdown stops accepting events and releases the transport. Call it after
// the supervisor tree has stopped the processor.
func (c *EventComponents) Shutdown() error {
	if c == nil {
		return nil
	}
	return errors.Join(c.Publisher.Close(), c.Bus.Close())
}
