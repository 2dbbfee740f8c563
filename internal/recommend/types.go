// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import "time"

// CatalogItem is the read-only catalog projection used by the engine.
type CatalogItem struct {
	ID         int64
	CategoryID int64
	BrandID    int64 // 0 when the item has no brand
	Name       string
	CreatedAt  time.Time

	// DefaultPrice is the default variant's price, nil when the item has no
	// default variant.
	DefaultPrice *float64
}

// HasDefaultVariant reports whether the item can be displayed with a price.
func (c *CatalogItem) HasDefaultVariant() bool {
	return c.DefaultPrice != nil
}

// FeatureVector maps lower-cased terms to additive weights.
type FeatureVector map[string]float64

// SimilarityEdge is one undirected edge of the similarity graph.
// LowID < HighID always holds for persisted edges.
type SimilarityEdge struct {
	LowID  int64   `json:"low"`
	HighID int64   `json:"high"`
	Score  float64 `json:"score"`
}

// PopularityStat is one weekly counter row.
type PopularityStat struct {
	ItemID        int64
	CategoryID    int64
	TimePeriod    time.Time // Monday 00:00 UTC
	ViewCount     int64
	PurchaseCount int64
}

// ItemCount is an aggregated count for an (item, category) pair.
type ItemCount struct {
	ItemID     int64
	CategoryID int64
	Count      int64
}

// ViewHistoryEntry is one remembered product view of a user.
type ViewHistoryEntry struct {
	UserID   int64
	ItemID   int64
	ViewTime time.Time
}

// Query selects recommendations. Zero ids mean absent.
type Query struct {
	UserID     int64
	ItemID     int64
	CategoryID int64
	Limit      int
}

// Recommendation is a resolved, displayable recommendation.
type Recommendation struct {
	ItemID     int64   `json:"item_id"`
	Name       string  `json:"name"`
	CategoryID int64   `json:"category_id"`
	Price      float64 `json:"price"`
}

// RebuildResult summarizes a similarity rebuild.
type RebuildResult struct {
	RunID    string        `json:"run_id"`
	Items    int           `json:"items"`
	Edges    int           `json:"edges"`
	Duration time.Duration `json:"duration"`
}

// AggregationResult summarizes a popularity aggregation run.
type AggregationResult struct {
	RunID        string        `json:"run_id"`
	TimePeriod   time.Time     `json:"time_period"`
	WindowStart  time.Time     `json:"window_start"`
	WindowEnd    time.Time     `json:"window_end"`
	ViewRows     int           `json:"view_rows"`
	PurchaseRows int           `json:"purchase_rows"`
	Duration     time.Duration `json:"duration"`
}
