// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

/*
Package cache provides the key/value caches behind recommendation lists,
popularity shortlists and the similarity graph snapshot.

Every backend stores opaque byte payloads with a per-entry time-to-live and
satisfies Store:

  - MemoryStore: bounded in-process LRU, the default for single instances
  - RedisStore: shared Redis cache for horizontally scaled deployments
  - BadgerStore: embedded persistent cache that survives restarts

New builds the configured backend and, when enabled, wraps it in a
BreakerStore so a dead backend fails fast with ErrCircuitOpen instead of
adding its timeout to every request.

Callers treat every error as a miss. The cache is never the source of truth.

# Usage

	store, err := cache.New(cfg.Cache)
	if err != nil {
	    return err
	}
	defer store.Close()

	if err := store.Set(ctx, "popularity:5", payload, 6*time.Hour); err != nil {
	    logging.Warn().Err(err).Msg("cache write failed")
	}
*/
package cache
