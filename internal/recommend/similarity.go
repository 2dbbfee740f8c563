// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package recommend

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// cosineEpsilon keeps zero vectors from dividing by zero.
const cosineEpsilon = 1e-8

// Cosine returns dot(a,b) / (|a||b| + 1e-8).
func Cosine(a, b FeatureVector) float64 {
	return cosineWithNorms(a, b, a.Norm(), b.Norm())
}

// cosineWithNorms iterates the smaller map and probes the larger one.
func cosineWithNorms(a, b FeatureVector, normA, normB float64) float64 {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for term, w := range small {
		if w2, ok := large[term]; ok {
			dot += w * w2
		}
	}
	if dot == 0 {
		return 0
	}
	return dot / (normA*normB + cosineEpsilon)
}

type itemVector struct {
	id     int64
	vector FeatureVector
	norm   float64
}

type scoredPair struct {
	a, b  int64
	score float64
}

type neighbor struct {
	id    int64
	score float64
}

// BuildGraph vectorizes items and returns the pruned, canonical similarity
// graph sorted by (LowID, HighID).
//
// Pairs scoring below threshold are dropped. Each item then keeps its
// maxNeighbors best neighbors, the directed lists are collapsed into
// canonical undirected edges, and a final greedy pass (best score first)
// drops edges that would take either endpoint past maxNeighbors. The last
// pass is what guarantees the per-item bound: an item can appear in another
// item's top list without being in its own.
//
// Pair scoring is split across shards goroutines and stops early when ctx is
// cancelled.
func BuildGraph(ctx context.Context, items []CatalogItem, threshold float64, maxNeighbors, shards int) ([]SimilarityEdge, error) {
	vectors := make([]itemVector, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for i := range items {
		if _, dup := seen[items[i].ID]; dup {
			continue
		}
		seen[items[i].ID] = struct{}{}
		v := Vectorize(&items[i])
		vectors = append(vectors, itemVector{id: items[i].ID, vector: v, norm: v.Norm()})
	}
	sort.Slice(vectors, func(i, j int) bool { return vectors[i].id < vectors[j].id })

	pairs, err := scorePairs(ctx, vectors, threshold, shards)
	if err != nil {
		return nil, err
	}
	return pruneGraph(pairs, maxNeighbors), nil
}

// scorePairs assigns row i to shard i%shards; every row scores against all
// higher rows so each unordered pair is visited exactly once.
func scorePairs(ctx context.Context, vectors []itemVector, threshold float64, shards int) ([]scoredPair, error) {
	if shards <= 0 {
		shards = runtime.NumCPU()
	}
	if shards > len(vectors) {
		shards = max(len(vectors), 1)
	}

	results := make([][]scoredPair, shards)
	g, gctx := errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		g.Go(func() error {
			var local []scoredPair
			for i := s; i < len(vectors); i += shards {
				if err := gctx.Err(); err != nil {
					return fmt.Errorf("score pairs: %w", err)
				}
				vi := &vectors[i]
				for j := i + 1; j < len(vectors); j++ {
					vj := &vectors[j]
					score := cosineWithNorms(vi.vector, vj.vector, vi.norm, vj.norm)
					if score >= threshold && score > 0 {
						local = append(local, scoredPair{a: vi.id, b: vj.id, score: min(score, 1)})
					}
				}
			}
			results[s] = local
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, r := range results {
		total += len(r)
	}
	all := make([]scoredPair, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

func pruneGraph(pairs []scoredPair, maxNeighbors int) []SimilarityEdge {
	// expand to directed candidates grouped by anchor
	byAnchor := make(map[int64][]neighbor)
	for _, p := range pairs {
		byAnchor[p.a] = append(byAnchor[p.a], neighbor{id: p.b, score: p.score})
		byAnchor[p.b] = append(byAnchor[p.b], neighbor{id: p.a, score: p.score})
	}

	// keep each anchor's top list, collapse to canonical pairs
	canonical := make(map[[2]int64]float64)
	for anchor, list := range byAnchor {
		sortNeighbors(list)
		if len(list) > maxNeighbors {
			list = list[:maxNeighbors]
		}
		for _, n := range list {
			low, high := anchor, n.id
			if low > high {
				low, high = high, low
			}
			canonical[[2]int64{low, high}] = n.score
		}
	}

	edges := make([]SimilarityEdge, 0, len(canonical))
	for k, score := range canonical {
		edges = append(edges, SimilarityEdge{LowID: k[0], HighID: k[1], Score: score})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Score != edges[j].Score {
			return edges[i].Score > edges[j].Score
		}
		return edgeLess(edges[i], edges[j])
	})

	degree := make(map[int64]int)
	kept := edges[:0]
	for _, e := range edges {
		if degree[e.LowID] >= maxNeighbors || degree[e.HighID] >= maxNeighbors {
			continue
		}
		degree[e.LowID]++
		degree[e.HighID]++
		kept = append(kept, e)
	}

	sort.Slice(kept, func(i, j int) bool { return edgeLess(kept[i], kept[j]) })
	return kept
}

func sortNeighbors(list []neighbor) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].id < list[j].id
	})
}

func edgeLess(a, b SimilarityEdge) bool {
	if a.LowID != b.LowID {
		return a.LowID < b.LowID
	}
	return a.HighID < b.HighID
}
