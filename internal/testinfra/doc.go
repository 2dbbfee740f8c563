// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

// Package testinfra provides container helpers for integration tests.
//
// Everything here is behind the integration build tag and needs a Docker
// daemon. Tests call SkipIfNoDocker first so plain `go test ./...` stays
// hermetic.
//
//	func TestRedisStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    redis, err := testinfra.NewRedisContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, redis)
//
//	    store, err := cache.NewRedisStore(config.RedisConfig{Addr: redis.Addr})
//	    ...
//	}
//
// Run with:
//
//	go test -tags integration ./...
package testinfra
