// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/metrics"
)

// Service is the entry point used by the HTTP API and the job scheduler.
type Service struct {
	blender    *Blender
	similarity *SimilarityEngine
	popularity *PopularityAggregator
	history    ViewHistory
	logger     zerolog.Logger
}

// NewService wires the engine components around deps.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(deps Dependencies, cfg *Config, logger zerolog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}
	if deps.Catalog == nil || deps.Popularity == nil || deps.History == nil ||
		deps.Searches == nil || deps.Similarity == nil || deps.Cache == nil {
		return nil, fmt.Errorf("recommend: all dependencies are required")
	}

	return &Service{
		blender:    NewBlender(deps, cfg, logger),
		similarity: NewSimilarityEngine(deps.Catalog, deps.Similarity, deps.Cache, cfg, logger),
		popularity: NewPopularityAggregator(deps.Popularity, logger),
		history:    deps.History,
		logger:     logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// GetRecommendations see Blender.GetRecommendations.
func (s *Service) GetRecommendations(ctx context.Context, q Query) ([]Recommendation, error) {
	return s.blender.GetRecommendations(ctx, q)
}

// RunSimilarityRebuild see SimilarityEngine.Run.
func (s *Service) RunSimilarityRebuild(ctx context.Context) (*RebuildResult, error) {
	return s.similarity.Run(ctx)
}

// RunPopularityAggregation see PopularityAggregator.Run.
func (s *Service) RunPopularityAggregation(ctx context.Context) (*AggregationResult, error) {
	return s.popularity.Run(ctx)
}

// CleanViewHistory purges view history entries older than retention.
func (s *Service) CleanViewHistory(ctx context.Context, retention time.Duration) (int64, error) {
	n, err := s.history.CleanOlderThan(ctx, retention)
	if err != nil {
		return 0, fmt.Errorf("clean view history: %w", err)
	}
	metrics.ViewHistoryPurged.Add(float64(n))
	s.logger.Info().Int64("removed", n).Dur("retention", retention).Msg("view history cleaned")
	return n, nil
}
