// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/shopfront/internal/logging"
	"github.com/tomtom215/shopfront/internal/metrics"
)

// Metadata keys set on every published message.
const (
	MetadataEventType = "event_type"
	MetadataUserID    = "user_id"
)

// Publisher validates, serializes and publishes storefront events. A circuit
// breaker fails publishes fast while the transport is down so API handlers
// can answer 503 instead of hanging.
type Publisher struct {
	publisher message.Publisher
	cb        *gobreaker.CircuitBreaker[any]
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps pub.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPublisher(pub message.Publisher, logger zerolog.Logger) *Publisher {
	const name = "event-publisher"
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("event publisher circuit breaker state change")
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Publisher{
		publisher: pub,
		cb:        cb,
		logger:    logger.With().Str("component", "events").Logger(),
	}
}

// PublishEvent publishes event to its topic. The event id becomes the
// message UUID and the JetStream deduplication id. A correlation id from ctx
// is carried in the message metadata.
//
// Invalid events fail with a *validation.RequestValidationError (wrapped);
// an unavailable transport fails with ErrBusUnavailable (wrapped).
func (p *Publisher) PublishEvent(ctx context.Context, event Event) error {
	data, err := SerializeEvent(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.ID(), data)
	msg.SetContext(ctx)
	msg.Metadata.Set(MetadataEventType, event.Type())
	msg.Metadata.Set(natsgo.MsgIdHdr, event.ID())
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		middleware.SetCorrelationID(id, msg)
	}

	if err := p.publish(event.Topic(), msg); err != nil {
		return err
	}
	metrics.EventsPublished.WithLabelValues(event.Type()).Inc()
	return nil
}

func (p *Publisher) publish(topic string, msg *message.Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return fmt.Errorf("%w: publisher is closed", ErrBusUnavailable)
	}

	_, err := p.cb.Execute(func() (any, error) {
		return nil, p.publisher.Publish(topic, msg)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %v", ErrBusUnavailable, err)
	default:
		p.logger.Error().Err(err).Str("topic", topic).Str("message_uuid", msg.UUID).Msg("Failed to publish event")
		return fmt.Errorf("%w: publish to %s: %v", ErrBusUnavailable, topic, err)
	}
}

// State returns the breaker state, for health reporting.
func (p *Publisher) State() gobreaker.State {
	return p.cb.State()
}

// Close stops accepting events. The underlying transport is owned by the Bus.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}
