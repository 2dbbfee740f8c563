// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/shopfront/internal/config"
)

// Config tunes the engine. DefaultConfig carries the production values.
type Config struct {
	// DefaultLimit replaces any non-positive request limit.
	DefaultLimit int

	// CandidateLimit caps the content and collaborative candidate sets.
	CandidateLimit int

	// PopularityLimit is the size of the cached popularity shortlist.
	PopularityLimit int

	// CollaborativeMinHistory is the cold-start guard: collaborative
	// candidates are only computed when the total view history (all users)
	// has at least this many entries.
	CollaborativeMinHistory int

	ResultCacheTTL     time.Duration
	PopularityCacheTTL time.Duration
	GraphCacheTTL      time.Duration

	// SimilarityThreshold drops pairs scoring below it.
	SimilarityThreshold float64

	// MaxNeighbors bounds the edges touching any one item.
	MaxNeighbors int

	// Shards is the number of goroutines scoring pairs; 0 uses NumCPU.
	Shards int

	// GraphRefreshInterval is how long the blender keeps a decoded graph
	// snapshot before re-reading it from the cache.
	GraphRefreshInterval time.Duration
}

// DefaultConfig returns the production configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultLimit:            6,
		CandidateLimit:          10,
		PopularityLimit:         10,
		CollaborativeMinHistory: 50,
		ResultCacheTTL:          6 * time.Hour,
		PopularityCacheTTL:      6 * time.Hour,
		GraphCacheTTL:           24 * time.Hour,
		SimilarityThreshold:     0.15,
		MaxNeighbors:            20,
		GraphRefreshInterval:    time.Minute,
	}
}

// ConfigFrom maps the recommend config section. Fields the section does
// not carry keep their defaults.
func ConfigFrom(cfg *config.RecommendConfig) *Config {
	c := DefaultConfig()
	c.DefaultLimit = cfg.DefaultLimit
	c.CandidateLimit = cfg.CandidateLimit
	c.PopularityLimit = cfg.PopularityLimit
	c.CollaborativeMinHistory = cfg.CollaborativeMinHistory
	c.ResultCacheTTL = cfg.ResultCacheTTL
	c.PopularityCacheTTL = cfg.PopularityCacheTTL
	c.GraphCacheTTL = cfg.GraphCacheTTL
	c.SimilarityThreshold = cfg.SimilarityThreshold
	c.MaxNeighbors = cfg.MaxNeighbors
	c.Shards = cfg.SimilarityShards
	return c
}

// Validate checks the configuration for impossible values.
func (c *Config) Validate() error {
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.CandidateLimit < 1 {
		return fmt.Errorf("candidate_limit must be positive, got %d", c.CandidateLimit)
	}
	if c.PopularityLimit < 1 {
		return fmt.Errorf("popularity_limit must be positive, got %d", c.PopularityLimit)
	}
	if c.CollaborativeMinHistory < 0 {
		return fmt.Errorf("collaborative_min_history must be non-negative, got %d", c.CollaborativeMinHistory)
	}
	if c.ResultCacheTTL <= 0 || c.PopularityCacheTTL <= 0 || c.GraphCacheTTL <= 0 {
		return fmt.Errorf("cache ttls must be positive")
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in [0, 1], got %f", c.SimilarityThreshold)
	}
	if c.MaxNeighbors < 1 {
		return fmt.Errorf("max_neighbors must be positive, got %d", c.MaxNeighbors)
	}
	if c.Shards < 0 {
		return fmt.Errorf("shards must be non-negative, got %d", c.Shards)
	}
	return nil
}
