// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

// Package recommend implements the storefront product recommendation engine.
//
// # Components
//
//   - Vectorize turns a catalog item into a sparse term vector (category,
//     brand, price bucket, name tokens).
//   - SimilarityEngine is the batch job that scores every item pair by cosine
//     similarity, prunes the result to a bounded neighbor graph and replaces
//     the persisted graph in one transaction.
//   - PopularityAggregator is the daily job that folds the current UTC day's
//     views and paid purchases into weekly (Monday aligned) counters.
//   - Blender is the request path. It gathers popularity, content and
//     collaborative candidates, blends them with fixed weights and caches the
//     resolved list.
//
// Service ties the three together behind the operations the rest of the
// application calls: GetRecommendations, RunSimilarityRebuild,
// RunPopularityAggregation and CleanViewHistory.
//
// # Storage and cache
//
// The package only depends on the narrow interfaces in interfaces.go. The
// database package implements them on DuckDB; the cache package provides
// memory, Redis and Badger implementations of Cache.
//
// Cache keys are literal and shared with other deployments:
//
//	recommend:{userId|0}:{itemId|0}:{categoryId|0}   TTL 6h
//	popularity:{categoryId|0}                        TTL 6h
//	similarity:graph                                 TTL 24h
//
// A recommend entry holds the full ranking and its resolved records, so one
// entry serves every limit.
//
// Cache faults never fail a request; they are logged (sampled) and the
// result is recomputed.
package recommend
