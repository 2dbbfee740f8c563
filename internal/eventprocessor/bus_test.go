// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package eventprocessor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/config"
)

func embeddedNATSConfig(t *testing.T) *config.EventsConfig {
	t.Helper()
	return &config.EventsConfig{
		Transport: TransportNATS,
		NATS: config.NATSConfig{
			EmbeddedServer:      true,
			Host:                "127.0.0.1",
			Port:                -1,
			StoreDir:            t.TempDir(),
			StreamName:          "STOREFRONT_TEST",
			StreamRetentionDays: 1,
			DurableName:         "shopfront-test",
			QueueGroup:          "shopfront-test",
			SubscribersCount:    1,
		},
	}
}

func TestNewBus_EmbeddedNATS(t *testing.T) {
	if testing.Short() {
		t.Skip("starts an embedded NATS server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bus, err := NewBus(ctx, embeddedNATSConfig(t), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	if bus.Transport() != TransportNATS {
		t.Errorf("Transport() = %q", bus.Transport())
	}
	h := bus.HealthCheck(ctx)
	if !h.Healthy {
		t.Fatalf("HealthCheck = %+v, want healthy", h)
	}
	if h.Details["embedded_server"] != true {
		t.Errorf("embedded_server detail = %v", h.Details["embedded_server"])
	}

	// The stream exists and EnsureStream stays idempotent.
	if _, err := bus.stream.EnsureStream(ctx); err != nil {
		t.Errorf("second EnsureStream: %v", err)
	}

	pub := NewPublisher(bus.Publisher(), zerolog.Nop())
	if err := pub.PublishEvent(ctx, &ProductViewed{EventID: "v1", ItemID: 1, ViewedAt: testTime}); err != nil {
		t.Fatalf("PublishEvent: %v", err)
	}

	if err := bus.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

// stubJetStream reports every stream as missing.
type stubJetStream struct {
	created []jetstream.StreamConfig
}

func (s *stubJetStream) Stream(context.Context, string) (jetstream.Stream, error) {
	return nil, jetstream.ErrStreamNotFound
}

func (s *stubJetStream) CreateStream(_ context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error) {
	s.created = append(s.created, cfg)
	return nil, nil
}

func (s *stubJetStream) UpdateStream(context.Context, jetstream.StreamConfig) (jetstream.Stream, error) {
	return nil, errors.New("unexpected update")
}

func TestStreamInitializer(t *testing.T) {
	if _, err := NewStreamInitializer(nil, StreamConfig{Name: "S"}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil JetStream: err = %v, want ErrInvalidConfig", err)
	}
	if _, err := NewStreamInitializer(&stubJetStream{}, StreamConfig{}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty name: err = %v, want ErrInvalidConfig", err)
	}

	js := &stubJetStream{}
	si, err := NewStreamInitializer(js, StreamConfig{Name: "STOREFRONT", MaxAge: time.Hour})
	if err != nil {
		t.Fatalf("NewStreamInitializer: %v", err)
	}
	if _, err := si.EnsureStream(context.Background()); err != nil {
		t.Fatalf("EnsureStream: %v", err)
	}
	if len(js.created) != 1 {
		t.Fatalf("CreateStream calls = %d, want 1", len(js.created))
	}
	got := js.created[0]
	if got.Name != "STOREFRONT" || len(got.Subjects) != 1 || got.Subjects[0] != SubjectWildcard || got.MaxAge != time.Hour {
		t.Errorf("stream config = %+v", got)
	}
	if si.IsHealthy(context.Background()) {
		t.Error("IsHealthy() = true for a missing stream")
	}
}
