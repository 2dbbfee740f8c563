// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import (
	"testing"
	"time"

	"github.com/tomtom215/shopfront/internal/config"
)

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(&config.RecommendConfig{
		DefaultLimit:            8,
		CandidateLimit:          12,
		PopularityLimit:         15,
		CollaborativeMinHistory: 100,
		ResultCacheTTL:          time.Hour,
		PopularityCacheTTL:      2 * time.Hour,
		GraphCacheTTL:           48 * time.Hour,
		SimilarityThreshold:     0.2,
		MaxNeighbors:            30,
		SimilarityShards:        4,
	})

	if cfg.DefaultLimit != 8 || cfg.CandidateLimit != 12 || cfg.PopularityLimit != 15 {
		t.Errorf("limits = %d/%d/%d", cfg.DefaultLimit, cfg.CandidateLimit, cfg.PopularityLimit)
	}
	if cfg.CollaborativeMinHistory != 100 || cfg.MaxNeighbors != 30 || cfg.Shards != 4 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ResultCacheTTL != time.Hour || cfg.PopularityCacheTTL != 2*time.Hour || cfg.GraphCacheTTL != 48*time.Hour {
		t.Errorf("ttls = %v/%v/%v", cfg.ResultCacheTTL, cfg.PopularityCacheTTL, cfg.GraphCacheTTL)
	}
	if cfg.GraphRefreshInterval != DefaultConfig().GraphRefreshInterval {
		t.Errorf("GraphRefreshInterval = %v, want default", cfg.GraphRefreshInterval)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestConfigValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero default limit", func(c *Config) { c.DefaultLimit = 0 }},
		{"zero candidate limit", func(c *Config) { c.CandidateLimit = 0 }},
		{"negative guard", func(c *Config) { c.CollaborativeMinHistory = -1 }},
		{"zero ttl", func(c *Config) { c.GraphCacheTTL = 0 }},
		{"threshold above one", func(c *Config) { c.SimilarityThreshold = 1.5 }},
		{"no neighbors", func(c *Config) { c.MaxNeighbors = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
