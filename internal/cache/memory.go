// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// memoryEntry is a node of the recency list.
type memoryEntry struct {
	key       string
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Stats tracks cache performance.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// MemoryStore is a thread-safe bounded LRU cache with per-entry TTL.
//
// Lookups are O(1). When the capacity is reached the least recently used
// entry is evicted. Expired entries are dropped lazily on access and by a
// background sweep every cleanupInterval until Close is called.
type MemoryStore struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	order    *list.List // front is most recently used
	stats    Stats
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

const cleanupInterval = 5 * time.Minute

// NewMemoryStore creates a store holding at most capacity entries and starts
// its cleanup goroutine.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	m := &MemoryStore{
		capacity: capacity,
		items:    make(map[string]*list.Element),
		order:    list.New(),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	m.stats.LastCleanup = m.now()
	go m.cleanupLoop()
	return m
}

// Get returns a copy of the payload and marks the entry as recently used.
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		m.stats.Misses++
		return nil, false, nil
	}
	entry := el.Value.(*memoryEntry)
	if entry.expired(m.now()) {
		m.removeElement(el)
		m.stats.Misses++
		m.stats.Evictions++
		return nil, false, nil
	}
	m.order.MoveToFront(el)
	m.stats.Hits++
	return clone(entry.value), true, nil
}

// Set stores a copy of value.
func (m *MemoryStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(key, value, ttl)
	return nil
}

// SetNX stores value unless a live entry exists for key.
func (m *MemoryStore) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if el, ok := m.items[key]; ok {
		if !el.Value.(*memoryEntry).expired(m.now()) {
			return false, nil
		}
		m.removeElement(el)
	}
	m.put(key, value, ttl)
	return true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.items[key]; ok {
		m.removeElement(el)
		m.stats.Evictions++
	}
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close stops the cleanup goroutine. The store stays usable.
func (m *MemoryStore) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

// Len returns the number of entries, expired ones included until swept.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// GetStats returns a snapshot of the counters.
func (m *MemoryStore) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.stats
	s.TotalKeys = int64(len(m.items))
	return s
}

// HitRate returns the hit rate as a percentage.
func (m *MemoryStore) HitRate() float64 {
	s := m.GetStats()
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total) * 100
}

// CleanupExpired drops every expired entry and returns how many it removed.
func (m *MemoryStore) CleanupExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for el := m.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*memoryEntry).expired(now) {
			m.removeElement(el)
			removed++
		}
		el = prev
	}
	m.stats.Evictions += int64(removed)
	m.stats.LastCleanup = now
	return removed
}

func (m *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupExpired()
		case <-m.stop:
			return
		}
	}
}

// put must be called with mu held.
func (m *MemoryStore) put(key string, value []byte, ttl time.Duration) {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	if el, ok := m.items[key]; ok {
		entry := el.Value.(*memoryEntry)
		entry.value = clone(value)
		entry.expiresAt = expiresAt
		m.order.MoveToFront(el)
		return
	}

	m.items[key] = m.order.PushFront(&memoryEntry{key: key, value: clone(value), expiresAt: expiresAt})
	for len(m.items) > m.capacity {
		m.removeElement(m.order.Back())
		m.stats.Evictions++
	}
}

func (m *MemoryStore) removeElement(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*memoryEntry).key)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
