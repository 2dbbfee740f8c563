// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/shopfront/internal/config"
	"github.com/tomtom215/shopfront/internal/testinfra"
)

func TestRedisStore_Integration(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testinfra.NewRedisContainer(ctx, testinfra.WithRedisStartTimeout(time.Minute))
	if err != nil {
		t.Fatalf("start redis: %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, container)

	store, err := NewRedisStore(config.RedisConfig{Addr: container.Addr, DialTimeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}
	defer store.Close()

	if _, found, err := store.Get(ctx, "popularity:0"); err != nil || found {
		t.Fatalf("Get on empty redis = %v, %v", found, err)
	}

	if err := store.Set(ctx, "popularity:0", []byte("[1,2,3]"), time.Hour); err != nil {
		t.Fatal(err)
	}
	val, found, err := store.Get(ctx, "popularity:0")
	if err != nil || !found || string(val) != "[1,2,3]" {
		t.Errorf("Get = %q, %v, %v", val, found, err)
	}

	ttl, err := store.client.TTL(ctx, "popularity:0").Result()
	if err != nil || ttl <= 59*time.Minute || ttl > time.Hour {
		t.Errorf("TTL = %v, %v; want about one hour", ttl, err)
	}

	ok, err := store.SetNX(ctx, "event:x", []byte("1"), time.Minute)
	if err != nil || !ok {
		t.Errorf("first SetNX = %v, %v", ok, err)
	}
	ok, err = store.SetNX(ctx, "event:x", []byte("2"), time.Minute)
	if err != nil || ok {
		t.Errorf("second SetNX = %v, %v", ok, err)
	}

	if err := store.Delete(ctx, "popularity:0"); err != nil {
		t.Fatal(err)
	}
	if _, found, _ := store.Get(ctx, "popularity:0"); found {
		t.Error("Expected key to be deleted")
	}
}
