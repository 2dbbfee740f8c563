// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package api

import (
	"context"
	"time"

	"github.com/tomtom215/shopfront/internal/cache"
	"github.com/tomtom215/shopfront/internal/eventprocessor"
	"github.com/tomtom215/shopfront/internal/jobs"
	"github.com/tomtom215/shopfront/internal/recommend"
)

// Recommender serves ranked recommendations.
type Recommender interface {
	GetRecommendations(ctx context.Context, q recommend.Query) ([]recommend.Recommendation, error)
}

// EventPublisher hands storefront events to the event bus.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event eventprocessor.Event) error
}

// JobRunner runs the named background jobs on demand.
type JobRunner interface {
	Has(name string) bool
	Run(ctx context.Context, name string) (any, error)
	Statuses() []jobs.Status
}

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies of the handlers. Events and EventHealth are nil when event
// ingestion is disabled.
type Dependencies struct {
	Recommender Recommender
	Events      EventPublisher
	Jobs        JobRunner
	DB          Pinger
	Cache       cache.Store
	EventHealth []eventprocessor.HealthCheckable
}

// HandlerConfig tunes request handling.
type HandlerConfig struct {
	// RequestTimeout bounds a recommendation request.
	RequestTimeout time.Duration

	// MaxBodyBytes bounds event request bodies.
	MaxBodyBytes int64
}

// DefaultHandlerConfig returns production defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		RequestTimeout: 5 * time.Second,
		MaxBodyBytes:   1 << 20,
	}
}

// Handler implements the HTTP endpoints.
type Handler struct {
	deps      Dependencies
	config    HandlerConfig
	startTime time.Time
}

// NewHandler creates a handler. Zero config fields take the defaults.
func NewHandler(deps Dependencies, cfg HandlerConfig) *Handler {
	defaults := DefaultHandlerConfig()
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	return &Handler{
		deps:      deps,
		config:    cfg,
		startTime: time.Now(),
	}
}
