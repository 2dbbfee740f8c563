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

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/config"
)

// Transport names accepted in events.transport.
const (
	TransportChannel = "channel"
	TransportNATS    = "nats"
)

// Bus owns the publisher and subscriber of one transport, plus the embedded
// NATS server and admin connection when they exist.
type Bus struct {
	transport  string
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     watermill.LoggerAdapter

	embedded *EmbeddedServer
	nc       *natsgo.Conn
	stream   *StreamInitializer

	closeOnce sync.Once
	closeErr  error
}

// NewBus builds the configured transport. For NATS it starts the embedded
// server when enabled and makes sure the event stream exists.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(ctx context.Context, cfg *config.EventsConfig, logger zerolog.Logger) (*Bus, error) {
	adapter := NewZerologAdapter(logger.With().Str("component", "events").Logger())

	switch cfg.Transport {
	case TransportChannel, "":
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 1024}, adapter)
		return &Bus{
			transport:  TransportChannel,
			publisher:  ch,
			subscriber: ch,
			logger:     adapter,
		}, nil
	case TransportNATS:
		return newNATSBus(ctx, &cfg.NATS, adapter)
	default:
		return nil, fmt.Errorf("%w: unknown event transport %q", ErrInvalidConfig, cfg.Transport)
	}
}

func newNATSBus(ctx context.Context, cfg *config.NATSConfig, logger watermill.LoggerAdapter) (b *Bus, err error) {
	b = &Bus{transport: TransportNATS, logger: logger}
	defer func() {
		if err != nil {
			_ = b.Close()
		}
	}()

	url := cfg.URL
	if cfg.EmbeddedServer {
		b.embedded, err = NewEmbeddedServer(cfg)
		if err != nil {
			return nil, err
		}
		url = b.embedded.ClientURL()
		logger.Info("Embedded NATS server started", watermill.LogFields{"url": url})
	}

	b.nc, err = natsgo.Connect(url, natsgo.Name("shopfront-admin"), natsgo.RetryOnFailedConnect(true))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	js, err := jetstream.New(b.nc)
	if err != nil {
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	retention := time.Duration(cfg.StreamRetentionDays) * 24 * time.Hour
	b.stream, err = NewStreamInitializer(js, StreamConfig{
		Name:            cfg.StreamName,
		Subjects:        []string{SubjectWildcard},
		MaxAge:          retention,
		DuplicateWindow: 2 * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	if _, err = b.stream.EnsureStream(ctx); err != nil {
		return nil, err
	}

	natsOpts := connectionOptions(logger)

	b.publisher, err = wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	subscribers := cfg.SubscribersCount
	if subscribers <= 0 {
		subscribers = 1
	}
	b.subscriber, err = wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: subscribers,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			AckAsync:      false,
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.BindStream(cfg.StreamName),
				natsgo.MaxDeliver(10),
				natsgo.AckWait(30 * time.Second),
				natsgo.DeliverAll(),
			},
			DurablePrefix: cfg.DurableName,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	return b, nil
}

func connectionOptions(logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}
}

// Transport returns the transport name.
func (b *Bus) Transport() string { return b.transport }

// Publisher returns the raw Watermill publisher.
func (b *Bus) Publisher() message.Publisher { return b.publisher }

// Subscriber returns the raw Watermill subscriber.
func (b *Bus) Subscriber() message.Subscriber { return b.subscriber }

// HealthCheck reports whether the transport can carry events.
func (b *Bus) HealthCheck(ctx context.Context) ComponentHealth {
	h := ComponentHealth{
		Name:      "event_bus",
		LastCheck: time.Now(),
		Details:   map[string]interface{}{"transport": b.transport},
	}

	if b.nc == nil {
		h.Healthy = b.publisher != nil
		if !h.Healthy {
			h.Error = "no publisher"
		}
		return h
	}

	if !b.nc.IsConnected() {
		h.Error = fmt.Sprintf("NATS connection %s", b.nc.Status())
		return h
	}
	if b.stream != nil && !b.stream.IsHealthy(ctx) {
		h.Error = "event stream unavailable"
		return h
	}
	h.Healthy = true
	if b.embedded != nil {
		h.Details["embedded_server"] = b.embedded.IsRunning()
	}
	return h
}

// Close releases the transport. It is safe to call more than once.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() {
		var errs []error
		if b.publisher != nil {
			errs = append(errs, b.publisher.Close())
		}
		// gochannel is both publisher and subscriber.
		if b.subscriber != nil && any(b.subscriber) != any(b.publisher) {
			errs = append(errs, b.subscriber.Close())
		}
		if b.nc != nil {
			b.nc.Close()
		}
		if b.embedded != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			errs = append(errs, b.embedded.Shutdown(ctx))
			cancel()
		}
		b.closeErr = errors.Join(errs...)
	})
	return b.closeErr
}
