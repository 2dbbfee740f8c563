// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shopfront/internal/metrics"
)

// SimilarityEngine rebuilds the item similarity graph. Runs are mutually
// exclusive within the process; a second caller gets ErrRebuildInProgress.
type SimilarityEngine struct {
	catalog CatalogReader
	store   SimilarityStore
	cache   Cache
	cfg     *Config
	logger  zerolog.Logger

	runMu sync.Mutex
}

// NewSimilarityEngine creates the rebuild job.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSimilarityEngine(catalog CatalogReader, store SimilarityStore, cache Cache, cfg *Config, logger zerolog.Logger) *SimilarityEngine {
	return &SimilarityEngine{
		catalog: catalog,
		store:   store,
		cache:   cache,
		cfg:     cfg,
		logger:  logger.With().Str("component", "similarity").Logger(),
	}
}

// Run performs a full rebuild: snapshot the catalog, score and prune all
// pairs, replace the persisted graph, then refresh the cached snapshot.
// A failed replace leaves the previous graph in place.
func (e *SimilarityEngine) Run(ctx context.Context) (*RebuildResult, error) {
	if !e.runMu.TryLock() {
		metrics.RecordSimilarityRebuild("skipped", 0, 0, 0)
		return nil, ErrRebuildInProgress
	}
	defer e.runMu.Unlock()

	start := time.Now()
	runID := uuid.New().String()
	logger := e.logger.With().Str("run_id", runID).Logger()
	logger.Info().Msg("similarity rebuild started")

	result, err := e.rebuild(ctx, runID, start)
	if err != nil {
		metrics.RecordSimilarityRebuild("error", time.Since(start), 0, 0)
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("similarity rebuild failed")
		return nil, err
	}

	metrics.RecordSimilarityRebuild("success", result.Duration, result.Items, result.Edges)
	logger.Info().
		Int("items", result.Items).
		Int("edges", result.Edges).
		Dur("duration", result.Duration).
		Msg("similarity rebuild complete")
	return result, nil
}

func (e *SimilarityEngine) rebuild(ctx context.Context, runID string, start time.Time) (*RebuildResult, error) {
	items, err := e.catalog.GetAllBasicInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}

	edges, err := BuildGraph(ctx, items, e.cfg.SimilarityThreshold, e.cfg.MaxNeighbors, e.cfg.Shards)
	if err != nil {
		return nil, fmt.Errorf("build similarity graph: %w", err)
	}

	if err := e.store.ReplaceAll(ctx, edges); err != nil {
		return nil, fmt.Errorf("replace similarity graph: %w", err)
	}

	// The graph is already committed; a cache fault only delays readers
	// until the next refresh.
	e.refreshSnapshot(ctx, edges)

	return &RebuildResult{
		RunID:    runID,
		Items:    len(items),
		Edges:    len(edges),
		Duration: time.Since(start),
	}, nil
}

func (e *SimilarityEngine) refreshSnapshot(ctx context.Context, edges []SimilarityEdge) {
	payload, err := json.Marshal(edges)
	if err != nil {
		e.logger.Warn().Err(err).Msg("encode graph snapshot")
		return
	}
	if err := e.cache.Set(ctx, GraphSnapshotKey, payload, e.cfg.GraphCacheTTL); err != nil {
		metrics.RecordCacheFault(GraphSnapshotKey, "set")
		e.logger.Warn().Err(err).Msg("graph snapshot not cached")
	}
}

// graphIndex is a decoded graph snapshot: neighbors per item, best first.
type graphIndex map[int64][]neighbor

func decodeGraphIndex(payload []byte) (graphIndex, error) {
	var edges []SimilarityEdge
	if err := json.Unmarshal(payload, &edges); err != nil {
		return nil, fmt.Errorf("decode graph snapshot: %w", err)
	}
	idx := make(graphIndex)
	for _, e := range edges {
		idx[e.LowID] = append(idx[e.LowID], neighbor{id: e.HighID, score: e.Score})
		idx[e.HighID] = append(idx[e.HighID], neighbor{id: e.LowID, score: e.Score})
	}
	for _, list := range idx {
		sortNeighbors(list)
	}
	return idx, nil
}

// Neighbors mirrors SimilarityStore.GetNeighbors: distinct neighbors of
// itemIDs ranked by their best score, excluding itemIDs themselves.
func (g graphIndex) Neighbors(itemIDs []int64, limit int) []int64 {
	exclude := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		exclude[id] = struct{}{}
	}
	best := make(map[int64]float64)
	for _, id := range itemIDs {
		for _, n := range g[id] {
			if _, skip := exclude[n.id]; skip {
				continue
			}
			if n.score > best[n.id] {
				best[n.id] = n.score
			}
		}
	}
	ranked := make([]neighbor, 0, len(best))
	for id, score := range best {
		ranked = append(ranked, neighbor{id: id, score: score})
	}
	sortNeighbors(ranked)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]int64, len(ranked))
	for i, n := range ranked {
		out[i] = n.id
	}
	return out
}
