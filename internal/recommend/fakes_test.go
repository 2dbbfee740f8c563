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
	"sync/atomic"
	"time"
)

func price(p float64) *float64 { return &p }

type fakeCatalog struct {
	mu    sync.Mutex
	items map[int64]CatalogItem
	err   error

	getByID       atomic.Int64
	getByCategory atomic.Int64
	searchByName  atomic.Int64
	getAll        atomic.Int64

	// block makes GetByID wait for ctx cancellation.
	block bool
}

func newFakeCatalog(items ...CatalogItem) *fakeCatalog {
	c := &fakeCatalog{items: make(map[int64]CatalogItem)}
	for _, it := range items {
		c.items[it.ID] = it
	}
	return c
}

func (c *fakeCatalog) sorted() []CatalogItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CatalogItem, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *fakeCatalog) GetByID(ctx context.Context, id int64) (*CatalogItem, error) {
	c.getByID.Add(1)
	if c.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if c.err != nil {
		return nil, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[id]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", id, ErrItemNotFound)
	}
	return &it, nil
}

func (c *fakeCatalog) GetByCategory(_ context.Context, categoryID int64, limit int) ([]CatalogItem, error) {
	c.getByCategory.Add(1)
	var out []CatalogItem
	for _, it := range c.sorted() {
		if it.CategoryID == categoryID && len(out) < limit {
			out = append(out, it)
		}
	}
	return out, c.err
}

func (c *fakeCatalog) SearchByName(_ context.Context, keyword string, limit int) ([]CatalogItem, error) {
	c.searchByName.Add(1)
	var out []CatalogItem
	for _, it := range c.sorted() {
		if strings.Contains(strings.ToLower(it.Name), strings.ToLower(keyword)) && len(out) < limit {
			out = append(out, it)
		}
	}
	return out, c.err
}

func (c *fakeCatalog) GetAllBasicInfo(context.Context) ([]CatalogItem, error) {
	c.getAll.Add(1)
	return c.sorted(), c.err
}

func (c *fakeCatalog) calls() int64 {
	return c.getByID.Load() + c.getByCategory.Load() + c.searchByName.Load() + c.getAll.Load()
}

type fakePopularity struct {
	popular map[int64][]int64
	calls   atomic.Int64
	err     error

	mu        sync.Mutex
	stats     map[string]*PopularityStat
	views     []ItemCount
	purchases []ItemCount
	failAt    string // "views", "purchases", "upsert_view", "upsert_purchase"
	txRuns    atomic.Int64
	entered   chan struct{}
	hold      chan struct{}
}

func (p *fakePopularity) GetPopularItems(_ context.Context, categoryID int64, limit int) ([]int64, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	ids := p.popular[categoryID]
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// InAggregationTx applies changes to a copy and swaps it in on success,
// mimicking commit and rollback.
func (p *fakePopularity) InAggregationTx(ctx context.Context, fn func(tx AggregationTx) error) error {
	p.txRuns.Add(1)
	if p.entered != nil {
		p.entered <- struct{}{}
	}
	if p.hold != nil {
		<-p.hold
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	work := make(map[string]*PopularityStat, len(p.stats))
	for k, v := range p.stats {
		cp := *v
		work[k] = &cp
	}
	if err := fn(&fakeAggTx{p: p, stats: work}); err != nil {
		return err
	}
	p.stats = work
	return nil
}

func statKey(itemID, categoryID int64, period time.Time) string {
	return fmt.Sprintf("%d/%d/%s", itemID, categoryID, period.Format(time.RFC3339))
}

type fakeAggTx struct {
	p     *fakePopularity
	stats map[string]*PopularityStat
}

func (t *fakeAggTx) CountViews(context.Context, time.Time, time.Time) ([]ItemCount, error) {
	if t.p.failAt == "views" {
		return nil, errors.New("views unavailable")
	}
	return t.p.views, nil
}

func (t *fakeAggTx) SumPurchases(context.Context, time.Time, time.Time) ([]ItemCount, error) {
	if t.p.failAt == "purchases" {
		return nil, errors.New("orders unavailable")
	}
	return t.p.purchases, nil
}

func (t *fakeAggTx) row(itemID, categoryID int64, period time.Time) *PopularityStat {
	k := statKey(itemID, categoryID, period)
	s, ok := t.stats[k]
	if !ok {
		s = &PopularityStat{ItemID: itemID, CategoryID: categoryID, TimePeriod: period}
		t.stats[k] = s
	}
	return s
}

func (t *fakeAggTx) UpsertView(_ context.Context, itemID, categoryID int64, period time.Time, delta int64) error {
	if t.p.failAt == "upsert_view" {
		return errors.New("constraint violation")
	}
	t.row(itemID, categoryID, period).ViewCount += delta
	return nil
}

func (t *fakeAggTx) UpsertPurchase(_ context.Context, itemID, categoryID int64, period time.Time, delta int64) error {
	if t.p.failAt == "upsert_purchase" {
		return errors.New("constraint violation")
	}
	t.row(itemID, categoryID, period).PurchaseCount += delta
	return nil
}

type fakeHistory struct {
	total    int64
	viewed   map[int64][]int64
	err      error
	calls    atomic.Int64
	cleaned  time.Duration
	cleanRet int64
}

func (h *fakeHistory) GetViewedItemIDs(_ context.Context, userID int64) ([]int64, error) {
	h.calls.Add(1)
	return h.viewed[userID], h.err
}

func (h *fakeHistory) GetTotalCount(context.Context) (int64, error) {
	h.calls.Add(1)
	return h.total, h.err
}

func (h *fakeHistory) CleanOlderThan(_ context.Context, age time.Duration) (int64, error) {
	h.cleaned = age
	return h.cleanRet, h.err
}

type fakeSearches struct {
	keywords map[int64]string
	calls    atomic.Int64
}

func (s *fakeSearches) GetRecentSearchKeyword(_ context.Context, userID int64) (string, error) {
	s.calls.Add(1)
	return s.keywords[userID], nil
}

type fakeSimilarity struct {
	neighbors map[int64][]int64 // flattened, already ranked
	calls     atomic.Int64

	mu       sync.Mutex
	replaced [][]SimilarityEdge
	err      error
	entered  chan struct{}
	hold     chan struct{}
}

func (s *fakeSimilarity) GetNeighbors(_ context.Context, itemIDs []int64, limit int) ([]int64, error) {
	s.calls.Add(1)
	exclude := make(map[int64]bool)
	for _, id := range itemIDs {
		exclude[id] = true
	}
	var out []int64
	seen := make(map[int64]bool)
	for _, id := range itemIDs {
		for _, n := range s.neighbors[id] {
			if exclude[n] || seen[n] || len(out) >= limit {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *fakeSimilarity) ReplaceAll(_ context.Context, edges []SimilarityEdge) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.hold != nil {
		<-s.hold
	}
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced = append(s.replaced, edges)
	return nil
}

type cacheEntry struct {
	value []byte
	ttl   time.Duration
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	gets    atomic.Int64
	sets    atomic.Int64
	getErr  error
	setErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]cacheEntry)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.gets.Add(1)
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e.value, ok, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.sets.Add(1)
	if c.setErr != nil {
		return c.setErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, ttl: ttl}
	return nil
}

func (c *fakeCache) entry(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	return e, ok
}
