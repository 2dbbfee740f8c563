// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package eventprocessor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Processor runs the ingestion router. Each Run builds a fresh Watermill
// router because a stopped router cannot be started again, which lets a
// supervisor restart the processor after a failure.
type Processor struct {
	bus      *Bus
	ingestor *Ingestor
	cfg      RouterConfig
	logger   zerolog.Logger

	running   atomic.Bool
	ready     chan struct{}
	readyOnce sync.Once
}

// NewProcessor wires the ingestion handlers to bus.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProcessor(bus *Bus, ingestor *Ingestor, cfg RouterConfig, logger zerolog.Logger) *Processor {
	return &Processor{
		bus:      bus,
		ingestor: ingestor,
		cfg:      cfg,
		logger:   logger.With().Str("component", "events").Logger(),
		ready:    make(chan struct{}),
	}
}

// Run consumes events until ctx is canceled.
func (p *Processor) Run(ctx context.Context) error {
	r, err := NewRouter(&p.cfg, p.bus.Publisher(), NewZerologAdapter(p.logger))
	if err != nil {
		return err
	}

	sub := p.bus.Subscriber()
	r.AddConsumerHandler(TypeProductViewed, TopicProductViewed, sub, p.ingestor.HandleProductViewed)
	r.AddConsumerHandler(TypeSearchPerformed, TopicSearchPerformed, sub, p.ingestor.HandleSearchPerformed)
	r.AddConsumerHandler(TypeOrderPaid, TopicOrderPaid, sub, p.ingestor.HandleOrderPaid)

	go func() {
		select {
		case <-r.Running():
			p.running.Store(true)
			p.readyOnce.Do(func() { close(p.ready) })
			p.logger.Info().Str("transport", p.bus.Transport()).Msg("Event router running")
		case <-ctx.Done():
		}
	}()
	defer p.running.Store(false)

	if err := r.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// Ready is closed once the first router has subscribed to every topic.
func (p *Processor) Ready() <-chan struct{} {
	return p.ready
}

// IsRunning reports whether a router is consuming.
func (p *Processor) IsRunning() bool {
	return p.running.Load()
}

// HealthCheck combines router state with transport health.
func (p *Processor) HealthCheck(ctx context.Context) ComponentHealth {
	h := p.bus.HealthCheck(ctx)
	h.Name = "events"
	if h.Details == nil {
		h.Details = map[string]interface{}{}
	}
	h.Details["router_running"] = p.IsRunning()
	if h.Healthy && !p.IsRunning() {
		h.Healthy = false
		h.Error = "event router is not running"
	}
	h.LastCheck = time.Now()
	return h
}
