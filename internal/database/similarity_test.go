// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package database

import (
	"context"
	"slices"
	"testing"

	"github.com/tomtom215/shopfront/internal/recommend"
)

func TestReplaceAll(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := []recommend.SimilarityEdge{
		{LowID: 1, HighID: 2, Score: 0.9},
		{LowID: 1, HighID: 3, Score: 0.4},
	}
	checkNoError(t, db.ReplaceAll(ctx, first))

	second := []recommend.SimilarityEdge{
		{LowID: 2, HighID: 3, Score: 0.5},
	}
	checkNoError(t, db.ReplaceAll(ctx, second))

	edges, err := db.GetAllEdges(ctx)
	checkNoError(t, err)
	if !slices.Equal(edges, second) {
		t.Errorf("GetAllEdges = %v, want %v", edges, second)
	}
}

func TestReplaceAll_RollsBackOnBadEdge(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	original := []recommend.SimilarityEdge{{LowID: 1, HighID: 2, Score: 0.9}}
	checkNoError(t, db.ReplaceAll(ctx, original))

	tests := []struct {
		name  string
		edges []recommend.SimilarityEdge
	}{
		{"reversed", []recommend.SimilarityEdge{{LowID: 3, HighID: 4, Score: 0.5}, {LowID: 6, HighID: 5, Score: 0.5}}},
		{"self loop", []recommend.SimilarityEdge{{LowID: 3, HighID: 3, Score: 0.5}}},
		{"score above one", []recommend.SimilarityEdge{{LowID: 3, HighID: 4, Score: 1.5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkError(t, db.ReplaceAll(ctx, tt.edges))

			edges, err := db.GetAllEdges(ctx)
			checkNoError(t, err)
			if !slices.Equal(edges, original) {
				t.Errorf("graph changed after failed replace: %v", edges)
			}
		})
	}
}

func TestReplaceAll_Empty(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	checkNoError(t, db.ReplaceAll(ctx, []recommend.SimilarityEdge{{LowID: 1, HighID: 2, Score: 0.9}}))
	checkNoError(t, db.ReplaceAll(ctx, nil))

	edges, err := db.GetAllEdges(ctx)
	checkNoError(t, err)
	if len(edges) != 0 {
		t.Errorf("GetAllEdges = %v, want empty", edges)
	}
}

func TestGetNeighbors(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	checkNoError(t, db.ReplaceAll(ctx, []recommend.SimilarityEdge{
		{LowID: 1, HighID: 2, Score: 0.3},
		{LowID: 1, HighID: 5, Score: 0.8},
		{LowID: 2, HighID: 4, Score: 0.6},
		{LowID: 3, HighID: 4, Score: 0.6},
		{LowID: 4, HighID: 5, Score: 0.2},
		{LowID: 6, HighID: 7, Score: 0.99},
	}))

	tests := []struct {
		name  string
		items []int64
		limit int
		want  []int64
	}{
		{"both edge directions", []int64{4}, 10, []int64{2, 3, 5}},
		{"excludes inputs", []int64{1, 4}, 10, []int64{5, 2, 3}},
		{"limit", []int64{1, 4}, 1, []int64{5}},
		{"no edges", []int64{9}, 10, nil},
		{"empty input", nil, 10, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.GetNeighbors(ctx, tt.items, tt.limit)
			checkNoError(t, err)
			if !slices.Equal(got, tt.want) {
				t.Errorf("GetNeighbors(%v) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}
