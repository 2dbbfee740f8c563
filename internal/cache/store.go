// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/shopfront/internal/config"
)

// ErrCircuitOpen is returned while the breaker in front of a backend is open.
var ErrCircuitOpen = errors.New("cache: circuit open")

// Store is a byte-oriented cache with per-entry TTL.
type Store interface {
	// Get returns the payload and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores value only if key is absent and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	Delete(ctx context.Context, key string) error

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

// DefaultMemoryCapacity bounds the in-process backend.
const DefaultMemoryCapacity = 50000

// New builds the configured backend, wrapped in a circuit breaker when
// cfg.Breaker.Enabled is set.
func New(cfg config.CacheConfig) (Store, error) {
	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case "", BackendMemory:
		store = NewMemoryStore(DefaultMemoryCapacity)
	case BackendRedis:
		store, err = NewRedisStore(cfg.Redis)
	case BackendBadger:
		store, err = NewBadgerStore(cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Backend, err)
	}

	if cfg.Breaker.Enabled {
		store = NewBreakerStore(store, cfg.Backend, cfg.Breaker)
	}
	return store, nil
}
