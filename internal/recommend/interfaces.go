// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrItemNotFound is returned by CatalogReader.GetByID for unknown ids.
	ErrItemNotFound = errors.New("catalog item not found")

	// ErrRebuildInProgress is returned when a similarity rebuild is already running.
	ErrRebuildInProgress = errors.New("similarity rebuild already in progress")

	// ErrAggregationInProgress is returned when a popularity aggregation is already running.
	ErrAggregationInProgress = errors.New("popularity aggregation already in progress")
)

// CatalogReader reads the product catalog.
type CatalogReader interface {
	// GetByID returns ErrItemNotFound (possibly wrapped) for unknown ids.
	GetByID(ctx context.Context, id int64) (*CatalogItem, error)

	// GetByCategory returns up to limit items of a category.
	GetByCategory(ctx context.Context, categoryID int64, limit int) ([]CatalogItem, error)

	// SearchByName returns up to limit items whose name contains keyword,
	// compared case-insensitively.
	SearchByName(ctx context.Context, keyword string, limit int) ([]CatalogItem, error)

	// GetAllBasicInfo returns a snapshot of every catalog item.
	GetAllBasicInfo(ctx context.Context) ([]CatalogItem, error)
}

// PopularityStore reads and maintains the weekly popularity counters.
type PopularityStore interface {
	// GetPopularItems returns up to limit item ids ranked by recent
	// view+purchase volume. categoryID 0 means all categories.
	GetPopularItems(ctx context.Context, categoryID int64, limit int) ([]int64, error)

	// InAggregationTx runs fn inside one transaction, committing only when fn
	// returns nil.
	InAggregationTx(ctx context.Context, fn func(tx AggregationTx) error) error
}

// AggregationTx is the transactional view of the popularity store.
type AggregationTx interface {
	CountViews(ctx context.Context, from, to time.Time) ([]ItemCount, error)
	SumPurchases(ctx context.Context, from, to time.Time) ([]ItemCount, error)
	UpsertView(ctx context.Context, itemID, categoryID int64, period time.Time, delta int64) error
	UpsertPurchase(ctx context.Context, itemID, categoryID int64, period time.Time, delta int64) error
}

// ViewHistory is the bounded per-user view history.
type ViewHistory interface {
	GetViewedItemIDs(ctx context.Context, userID int64) ([]int64, error)

	// GetTotalCount counts entries across all users.
	GetTotalCount(ctx context.Context) (int64, error)

	// CleanOlderThan deletes entries older than age and returns how many.
	CleanOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// SearchLookup returns a user's most recent search keyword, "" when none.
type SearchLookup interface {
	GetRecentSearchKeyword(ctx context.Context, userID int64) (string, error)
}

// SimilarityStore persists the similarity graph.
type SimilarityStore interface {
	// GetNeighbors returns up to limit distinct neighbors of itemIDs, best
	// score first, never including any of itemIDs.
	GetNeighbors(ctx context.Context, itemIDs []int64, limit int) ([]int64, error)

	// ReplaceAll swaps the whole graph atomically.
	ReplaceAll(ctx context.Context, edges []SimilarityEdge) error
}

// Cache is a byte-oriented key-value store with per-key TTL.
type Cache interface {
	// Get reports found=false on a miss; err is reserved for backend faults.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
