// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/tomtom215/shopfront/internal/logging"
	"github.com/tomtom215/shopfront/internal/metrics"
)

// Blend weights. The cold-start branch sums to 0.95, not 1.0. The values are
// kept as they are: scaling all weights by a constant would not change the
// order of the output, only the raw scores.
const (
	collaborativeWeight           = 0.4
	contentWeight                 = 0.35
	popularityWeight              = 0.25
	popularityWeightWithoutCollab = 0.6
)

// Candidates are the three candidate sets of one request.
type Candidates struct {
	Popular       []int64
	Content       []int64
	Collaborative []int64
}

// Blend scores every candidate by set membership and returns the best limit
// ids. Equal scores are ordered by ascending id.
//
//	score = wCollab*[collaborative] + 0.35*[content] + wPop*[popular]
//
// wCollab/wPop are 0.4/0.25 when the collaborative set is non-empty and
// 0/0.6 otherwise.
func Blend(c Candidates, limit int) []int64 {
	wCollab, wPop := 0.0, popularityWeightWithoutCollab
	if len(c.Collaborative) > 0 {
		wCollab, wPop = collaborativeWeight, popularityWeight
	}

	type member struct{ collab, content, popular bool }
	members := make(map[int64]*member)
	mark := func(ids []int64, set func(*member)) {
		for _, id := range ids {
			m, ok := members[id]
			if !ok {
				m = &member{}
				members[id] = m
			}
			set(m)
		}
	}
	mark(c.Collaborative, func(m *member) { m.collab = true })
	mark(c.Content, func(m *member) { m.content = true })
	mark(c.Popular, func(m *member) { m.popular = true })

	type scored struct {
		id    int64
		score float64
	}
	ranked := make([]scored, 0, len(members))
	for id, m := range members {
		var s float64
		if m.collab {
			s += wCollab
		}
		if m.content {
			s += contentWeight
		}
		if m.popular {
			s += wPop
		}
		ranked = append(ranked, scored{id: id, score: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	ids := make([]int64, len(ranked))
	for i, r := range ranked {
		ids[i] = r.id
	}
	return ids
}

// Dependencies are the collaborators of the engine.
type Dependencies struct {
	Catalog    CatalogReader
	Popularity PopularityStore
	History    ViewHistory
	Searches   SearchLookup
	Similarity SimilarityStore
	Cache      Cache
}

// Blender answers recommendation queries, cache-aside.
type Blender struct {
	deps   Dependencies
	cfg    *Config
	logger zerolog.Logger
	now    func() time.Time

	// faultLog samples cache fault logging so a dead backend does not flood
	// the log at request rate.
	faultLog rate.Sometimes

	graphMu       sync.Mutex
	graph         graphIndex
	graphLoadedAt time.Time
	graphLoad     singleflight.Group
}

// graphLoadTimeout bounds a snapshot read, which no longer follows the
// cancellation of the request that triggered it.
const graphLoadTimeout = 5 * time.Second

// cachedResult is the value stored under RecommendKey. It holds the whole
// ranked list so that a hit answers any limit exactly as a fresh computation
// would.
type cachedResult struct {
	Ranked        []int64          `json:"ranked"`
	Items         []Recommendation `json:"items"`
	Collaborative bool             `json:"collaborative"`
}

// top returns the resolved records among the first limit ranked ids, in
// rank order. Ids that did not resolve leave the list shorter.
func (r *cachedResult) top(limit int) []Recommendation {
	ranked := r.Ranked
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	keep := make(map[int64]struct{}, len(ranked))
	for _, id := range ranked {
		keep[id] = struct{}{}
	}
	out := make([]Recommendation, 0, len(ranked))
	for _, rec := range r.Items {
		if _, ok := keep[rec.ItemID]; ok {
			out = append(out, rec)
		}
	}
	return out
}

func (r *cachedResult) branch() string {
	if r.Collaborative {
		return metrics.BranchCollaborative
	}
	return metrics.BranchColdStart
}

// NewBlender creates the request-path component.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBlender(deps Dependencies, cfg *Config, logger zerolog.Logger) *Blender {
	return &Blender{
		deps:     deps,
		cfg:      cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		now:      time.Now,
		faultLog: rate.Sometimes{First: 3, Interval: 30 * time.Second},
	}
}

// GetRecommendations returns up to q.Limit resolved recommendations
// (DefaultLimit when q.Limit <= 0). Ids that no longer resolve, or resolve to
// an item without a default variant, are skipped, so the list may be shorter
// than the limit.
//
// A cached result for the same (user, item, category) is returned without
// touching any other collaborator. The key carries no limit, so the cache
// holds the full ranking and every limit is cut from it. On cancellation the
// whole call fails.
func (b *Blender) GetRecommendations(ctx context.Context, q Query) ([]Recommendation, error) {
	start := time.Now()
	q = b.normalize(q)
	key := RecommendKey(q.UserID, q.ItemID, q.CategoryID)

	if res, ok := b.readCached(ctx, key); ok {
		metrics.RecordRecommendation("cache_hit", res.branch(), time.Since(start))
		return res.top(q.Limit), nil
	}

	res, err := b.compute(ctx, q)
	if err != nil {
		metrics.RecordRecommendation("error", metrics.BranchUnknown, time.Since(start))
		return nil, err
	}

	b.writeCached(ctx, key, res)
	metrics.RecordRecommendation("computed", res.branch(), time.Since(start))
	return res.top(q.Limit), nil
}

func (b *Blender) normalize(q Query) Query {
	if q.Limit <= 0 {
		q.Limit = b.cfg.DefaultLimit
	}
	q.UserID = max(q.UserID, 0)
	q.ItemID = max(q.ItemID, 0)
	q.CategoryID = max(q.CategoryID, 0)
	return q
}

func (b *Blender) compute(ctx context.Context, q Query) (*cachedResult, error) {
	cands, err := b.gather(ctx, q)
	if err != nil {
		return nil, err
	}

	metrics.RecordCandidates("popular", len(cands.Popular))
	metrics.RecordCandidates("content", len(cands.Content))
	metrics.RecordCandidates("collaborative", len(cands.Collaborative))

	ranked := Blend(cands, len(cands.Popular)+len(cands.Content)+len(cands.Collaborative))
	items, err := b.resolve(ctx, ranked)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("recommendations: %w", err)
	}

	logger := logging.Enrich(ctx, b.logger)
	logger.Debug().
		Int64("user_id", q.UserID).
		Int64("item_id", q.ItemID).
		Int64("category_id", q.CategoryID).
		Int("popular", len(cands.Popular)).
		Int("content", len(cands.Content)).
		Int("collaborative", len(cands.Collaborative)).
		Int("ranked", len(ranked)).
		Int("resolved", len(items)).
		Msg("recommendations computed")
	return &cachedResult{Ranked: ranked, Items: items, Collaborative: len(cands.Collaborative) > 0}, nil
}

// gather fetches the three candidate sets concurrently. The first error
// cancels the others.
func (b *Blender) gather(ctx context.Context, q Query) (Candidates, error) {
	var c Candidates
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := b.popularCandidates(gctx, q.CategoryID)
		if err != nil {
			return fmt.Errorf("popularity candidates: %w", err)
		}
		c.Popular = ids
		return nil
	})
	g.Go(func() error {
		ids, err := b.contentCandidates(gctx, q)
		if err != nil {
			return fmt.Errorf("content candidates: %w", err)
		}
		c.Content = ids
		return nil
	})
	g.Go(func() error {
		ids, err := b.collaborativeCandidates(gctx, q.UserID)
		if err != nil {
			return fmt.Errorf("collaborative candidates: %w", err)
		}
		c.Collaborative = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return Candidates{}, err
	}
	return c, nil
}

func (b *Blender) popularCandidates(ctx context.Context, categoryID int64) ([]int64, error) {
	key := PopularityKey(categoryID)
	if payload, ok := b.cacheGet(ctx, key); ok {
		var ids []int64
		if err := json.Unmarshal(payload, &ids); err == nil {
			return capIDs(ids, b.cfg.PopularityLimit), nil
		}
		b.logger.Warn().Str("key", key).Msg("discarding undecodable popularity shortlist")
	}

	ids, err := b.deps.Popularity.GetPopularItems(ctx, categoryID, b.cfg.PopularityLimit)
	if err != nil {
		return nil, err
	}
	ids = capIDs(ids, b.cfg.PopularityLimit)
	if payload, err := json.Marshal(ids); err == nil {
		b.cacheSet(ctx, key, payload, b.cfg.PopularityCacheTTL)
	}
	return ids, nil
}

// contentCandidates returns same-category items of the anchor followed by
// name matches of the user's last search, deduplicated, never the anchor,
// capped at CandidateLimit.
func (b *Blender) contentCandidates(ctx context.Context, q Query) ([]int64, error) {
	limit := b.cfg.CandidateLimit
	out := make([]int64, 0, limit)
	seen := map[int64]struct{}{q.ItemID: {}}
	appendItems := func(items []CatalogItem) {
		for i := range items {
			if len(out) >= limit {
				return
			}
			if _, dup := seen[items[i].ID]; dup {
				continue
			}
			seen[items[i].ID] = struct{}{}
			out = append(out, items[i].ID)
		}
	}

	if q.ItemID > 0 {
		categoryID, err := b.anchorCategory(ctx, q)
		if err != nil {
			return nil, err
		}
		if categoryID > 0 {
			// one extra so the anchor can be dropped without shrinking the set
			items, err := b.deps.Catalog.GetByCategory(ctx, categoryID, limit+1)
			if err != nil {
				return nil, fmt.Errorf("same-category items: %w", err)
			}
			appendItems(items)
		}
	}

	if q.UserID > 0 && len(out) < limit {
		keyword, err := b.deps.Searches.GetRecentSearchKeyword(ctx, q.UserID)
		if err != nil {
			return nil, fmt.Errorf("recent search keyword: %w", err)
		}
		if keyword = strings.TrimSpace(keyword); keyword != "" {
			items, err := b.deps.Catalog.SearchByName(ctx, keyword, limit)
			if err != nil {
				return nil, fmt.Errorf("search by name: %w", err)
			}
			appendItems(items)
		}
	}
	return out, nil
}

// anchorCategory prefers the requested category and otherwise looks up the
// anchor's own. An unknown anchor yields 0.
func (b *Blender) anchorCategory(ctx context.Context, q Query) (int64, error) {
	if q.CategoryID > 0 {
		return q.CategoryID, nil
	}
	anchor, err := b.deps.Catalog.GetByID(ctx, q.ItemID)
	switch {
	case err == nil:
		return anchor.CategoryID, nil
	case errors.Is(err, ErrItemNotFound):
		return 0, nil
	default:
		return 0, fmt.Errorf("anchor item: %w", err)
	}
}

// collaborativeCandidates returns neighbors of the user's viewed items, or
// nothing while the total view history is below the cold-start threshold.
func (b *Blender) collaborativeCandidates(ctx context.Context, userID int64) ([]int64, error) {
	if userID <= 0 {
		return nil, nil
	}
	total, err := b.deps.History.GetTotalCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("view history total: %w", err)
	}
	if total < int64(b.cfg.CollaborativeMinHistory) {
		return nil, nil
	}

	viewed, err := b.deps.History.GetViewedItemIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("viewed items: %w", err)
	}
	if len(viewed) == 0 {
		return nil, nil
	}

	if idx := b.graphSnapshot(ctx); idx != nil {
		return idx.Neighbors(viewed, b.cfg.CandidateLimit), nil
	}
	ids, err := b.deps.Similarity.GetNeighbors(ctx, viewed, b.cfg.CandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("similarity neighbors: %w", err)
	}
	return capIDs(ids, b.cfg.CandidateLimit), nil
}

// graphSnapshot returns the decoded cached graph, re-reading it at most once
// per GraphRefreshInterval. nil means "ask the similarity store".
//
// Concurrent callers share one cache read, which runs outside graphMu and
// outlives the cancellation of the caller that started it.
func (b *Blender) graphSnapshot(ctx context.Context) graphIndex {
	if idx, fresh := b.freshGraph(); fresh {
		return idx
	}

	ch := b.graphLoad.DoChan(GraphSnapshotKey, func() (any, error) {
		if idx, fresh := b.freshGraph(); fresh {
			return idx, nil
		}
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), graphLoadTimeout)
		defer cancel()
		idx := b.loadGraph(loadCtx)

		b.graphMu.Lock()
		b.graph, b.graphLoadedAt = idx, b.now()
		b.graphMu.Unlock()
		return idx, nil
	})

	select {
	case res := <-ch:
		idx, _ := res.Val.(graphIndex)
		return idx
	case <-ctx.Done():
		return nil
	}
}

func (b *Blender) freshGraph() (graphIndex, bool) {
	b.graphMu.Lock()
	defer b.graphMu.Unlock()
	if b.graphLoadedAt.IsZero() || b.now().Sub(b.graphLoadedAt) >= b.cfg.GraphRefreshInterval {
		return nil, false
	}
	return b.graph, true
}

func (b *Blender) loadGraph(ctx context.Context) graphIndex {
	payload, ok := b.cacheGet(ctx, GraphSnapshotKey)
	if !ok {
		return nil
	}
	idx, err := decodeGraphIndex(payload)
	if err != nil {
		b.logger.Warn().Err(err).Msg("ignoring cached graph snapshot")
		return nil
	}
	return idx
}

// resolve looks every id up concurrently and keeps the input order.
func (b *Blender) resolve(ctx context.Context, ids []int64) ([]Recommendation, error) {
	resolved := make([]*Recommendation, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			item, err := b.deps.Catalog.GetByID(gctx, id)
			if errors.Is(err, ErrItemNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("resolve item %d: %w", id, err)
			}
			if !item.HasDefaultVariant() {
				return nil
			}
			resolved[i] = &Recommendation{
				ItemID:     item.ID,
				Name:       item.Name,
				CategoryID: item.CategoryID,
				Price:      *item.DefaultPrice,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recs := make([]Recommendation, 0, len(ids))
	for _, r := range resolved {
		if r != nil {
			recs = append(recs, *r)
		}
	}
	return recs, nil
}

func (b *Blender) readCached(ctx context.Context, key string) (*cachedResult, bool) {
	payload, ok := b.cacheGet(ctx, key)
	if !ok {
		return nil, false
	}
	var res cachedResult
	if err := json.Unmarshal(payload, &res); err != nil {
		b.logger.Warn().Err(err).Str("key", key).Msg("discarding undecodable cache entry")
		return nil, false
	}
	return &res, true
}

func (b *Blender) writeCached(ctx context.Context, key string, res *cachedResult) {
	payload, err := json.Marshal(res)
	if err != nil {
		b.logger.Warn().Err(err).Str("key", key).Msg("encode recommendations")
		return
	}
	b.cacheSet(ctx, key, payload, b.cfg.ResultCacheTTL)
}

// cacheGet treats backend faults as misses.
func (b *Blender) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	payload, found, err := b.deps.Cache.Get(ctx, key)
	if err != nil {
		metrics.RecordCacheFault(key, "get")
		b.faultLog.Do(func() {
			logger := logging.Enrich(ctx, b.logger)
			logger.Warn().Err(err).Str("key", key).Msg("cache read failed, recomputing")
		})
		return nil, false
	}
	metrics.RecordCacheLookup(key, found)
	return payload, found
}

func (b *Blender) cacheSet(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if err := b.deps.Cache.Set(ctx, key, payload, ttl); err != nil {
		metrics.RecordCacheFault(key, "set")
		b.faultLog.Do(func() {
			logger := logging.Enrich(ctx, b.logger)
			logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		})
	}
}

func capIDs(ids []int64, limit int) []int64 {
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
