// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/shopfront/internal/config"
)

func TestNewRedisStore_UnreachableAtStartup(t *testing.T) {
	store, err := NewRedisStore(config.RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v, want a store that degrades", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err == nil {
		t.Error("Ping should fail while redis is down")
	}
	if _, found, err := store.Get(ctx, "recommend:0:0:0"); err == nil || found {
		t.Errorf("Get = found %v, err %v; want a fault", found, err)
	}
	if err := store.Set(ctx, "recommend:0:0:0", []byte("[]"), time.Minute); err == nil {
		t.Error("Set should fail while redis is down")
	}
}
