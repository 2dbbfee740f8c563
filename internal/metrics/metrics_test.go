// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c interface {
	Write(*io_prometheus_client.Metric) error
}) float64 {
	t.Helper()
	var m io_prometheus_client.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestCacheFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"recommend:1:2:3", "recommend"},
		{"popularity:0", "popularity"},
		{"similarity:graph", "similarity"},
		{"bare", "other"},
		{":leading", "other"},
	}
	for _, tt := range tests {
		if got := CacheFamily(tt.key); got != tt.want {
			t.Errorf("CacheFamily(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := CacheHits.WithLabelValues("recommend")
	misses := CacheMisses.WithLabelValues("popularity")
	beforeHits := counterValue(t, hits)
	beforeMisses := counterValue(t, misses)

	RecordCacheLookup("recommend:5:0:0", true)
	RecordCacheLookup("popularity:3", false)

	if got := counterValue(t, hits) - beforeHits; got != 1 {
		t.Errorf("hits delta = %v, want 1", got)
	}
	if got := counterValue(t, misses) - beforeMisses; got != 1 {
		t.Errorf("misses delta = %v, want 1", got)
	}
}

func TestRecordCacheFault(t *testing.T) {
	c := CacheFaults.WithLabelValues("recommend", "set")
	before := counterValue(t, c)
	RecordCacheFault("recommend:0:0:0", "set")
	if got := counterValue(t, c) - before; got != 1 {
		t.Errorf("faults delta = %v, want 1", got)
	}
}

func TestRecordDBQuery(t *testing.T) {
	errs := DBQueryErrors.WithLabelValues("upsert", "popularity_stats")
	before := counterValue(t, errs)

	RecordDBQuery("upsert", "popularity_stats", 3*time.Millisecond, nil)
	RecordDBQuery("upsert", "popularity_stats", 3*time.Millisecond, errors.New("conflict"))

	if got := counterValue(t, errs) - before; got != 1 {
		t.Errorf("errors delta = %v, want 1", got)
	}
}

func TestRecordRecommendation(t *testing.T) {
	hit := RecommendRequests.WithLabelValues("cache_hit", BranchCollaborative)
	cold := RecommendRequests.WithLabelValues("computed", BranchColdStart)
	failed := RecommendRequests.WithLabelValues("error", BranchUnknown)
	bh, bc, bf := counterValue(t, hit), counterValue(t, cold), counterValue(t, failed)

	RecordRecommendation("cache_hit", BranchCollaborative, time.Millisecond)
	RecordRecommendation("computed", BranchColdStart, 2*time.Millisecond)
	RecordRecommendation("computed", BranchColdStart, 2*time.Millisecond)
	RecordRecommendation("error", BranchUnknown, time.Millisecond)

	if got := counterValue(t, hit) - bh; got != 1 {
		t.Errorf("cache_hit/collaborative delta = %v, want 1", got)
	}
	if got := counterValue(t, cold) - bc; got != 2 {
		t.Errorf("computed/cold_start delta = %v, want 2", got)
	}
	if got := counterValue(t, failed) - bf; got != 1 {
		t.Errorf("error/unknown delta = %v, want 1", got)
	}
}

func TestRecordSimilarityRebuild(t *testing.T) {
	RecordSimilarityRebuild("success", time.Second, 120, 800)

	if got := testutil.ToFloat64(SimilarityGraphEdges); got != 800 {
		t.Errorf("edges gauge = %v, want 800", got)
	}
	if got := testutil.ToFloat64(SimilarityGraphItems); got != 120 {
		t.Errorf("items gauge = %v, want 120", got)
	}

	// skipped runs leave the gauges untouched
	RecordSimilarityRebuild("skipped", 0, 0, 0)
	if got := testutil.ToFloat64(SimilarityGraphEdges); got != 800 {
		t.Errorf("edges gauge after skip = %v, want 800", got)
	}
}

func TestRecordPopularityAggregation(t *testing.T) {
	views := PopularityRowsUpserted.WithLabelValues("view")
	purchases := PopularityRowsUpserted.WithLabelValues("purchase")
	bv, bp := counterValue(t, views), counterValue(t, purchases)

	RecordPopularityAggregation("success", time.Millisecond, 4, 2)
	RecordPopularityAggregation("error", time.Millisecond, 100, 100)

	if got := counterValue(t, views) - bv; got != 4 {
		t.Errorf("view rows delta = %v, want 4", got)
	}
	if got := counterValue(t, purchases) - bp; got != 2 {
		t.Errorf("purchase rows delta = %v, want 2", got)
	}
}

func TestRecordEvent(t *testing.T) {
	ok := EventsIngested.WithLabelValues("product.viewed")
	failed := EventsFailed.WithLabelValues("product.viewed")
	bo, bf := counterValue(t, ok), counterValue(t, failed)

	RecordEvent("product.viewed", nil)
	RecordEvent("product.viewed", errors.New("bad payload"))

	if counterValue(t, ok)-bo != 1 || counterValue(t, failed)-bf != 1 {
		t.Error("expected one ingested and one failed event")
	}
}
