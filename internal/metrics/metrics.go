// Shopfront - Storefront Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shopfront

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopfront_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopfront_api_active_requests",
			Help: "In-flight API requests",
		},
	)

	// Database
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopfront_db_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_db_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_cache_hits_total",
			Help: "Cache hits by key family",
		},
		[]string{"family"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_cache_misses_total",
			Help: "Cache misses by key family",
		},
		[]string{"family"},
	)

	CacheFaults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_cache_faults_total",
			Help: "Cache backend errors by key family and operation",
		},
		[]string{"family", "operation"},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shopfront_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_circuit_breaker_state_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Recommendations
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_recommend_requests_total",
			Help: "Recommendation requests by outcome (cache_hit, computed, error) and blend branch (collaborative, cold_start, unknown)",
		},
		[]string{"outcome", "branch"},
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopfront_recommend_duration_seconds",
			Help:    "Time to produce a recommendation list",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	RecommendCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopfront_recommend_candidates",
			Help:    "Candidates contributed per source",
			Buckets: []float64{0, 1, 2, 5, 10, 20},
		},
		[]string{"source"}, // popular, content, collaborative
	)

	// Similarity rebuild
	SimilarityRebuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopfront_similarity_rebuild_duration_seconds",
			Help:    "Duration of similarity graph rebuilds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800},
		},
	)

	SimilarityRebuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_similarity_rebuilds_total",
			Help: "Similarity rebuild runs by result (success, error, skipped)",
		},
		[]string{"result"},
	)

	SimilarityGraphEdges = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopfront_similarity_graph_edges",
			Help: "Edges in the last persisted similarity graph",
		},
	)

	SimilarityGraphItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shopfront_similarity_graph_items",
			Help: "Items vectorized in the last similarity rebuild",
		},
	)

	// Popularity aggregation
	PopularityAggregationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shopfront_popularity_aggregation_duration_seconds",
			Help:    "Duration of popularity aggregation runs",
			Buckets: prometheus.DefBuckets,
		},
	)

	PopularityAggregationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_popularity_aggregations_total",
			Help: "Popularity aggregation runs by result (success, error, skipped)",
		},
		[]string{"result"},
	)

	PopularityRowsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_popularity_rows_upserted_total",
			Help: "Popularity rows upserted by counter kind",
		},
		[]string{"kind"}, // view, purchase
	)

	// Events
	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_events_ingested_total",
			Help: "Storefront events processed by type",
		},
		[]string{"type"},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_events_failed_total",
			Help: "Storefront events that failed processing by type",
		},
		[]string{"type"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_events_published_total",
			Help: "Storefront events accepted by the API and published",
		},
		[]string{"type"},
	)

	// Jobs
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopfront_job_runs_total",
			Help: "Scheduled job runs by job and result",
		},
		[]string{"job", "result"},
	)

	ViewHistoryPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shopfront_view_history_purged_total",
			Help: "View history rows removed by retention cleanup",
		},
	)
)

// RecordDBQuery records a DuckDB query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
		return
	}
	APIActiveRequests.Dec()
}

// CacheFamily returns the key prefix before the first colon
// ("recommend:1:0:0" -> "recommend") so label cardinality stays bounded.
func CacheFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}

// RecordCacheLookup records a hit or a miss for key.
func RecordCacheLookup(key string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(CacheFamily(key)).Inc()
		return
	}
	CacheMisses.WithLabelValues(CacheFamily(key)).Inc()
}

// RecordCacheFault records a backend error for a get or set on key.
func RecordCacheFault(key, operation string) {
	CacheFaults.WithLabelValues(CacheFamily(key), operation).Inc()
}

// Blend branches for RecordRecommendation.
const (
	BranchCollaborative = "collaborative"
	BranchColdStart     = "cold_start"
	BranchUnknown       = "unknown"
)

// RecordRecommendation records one served request. branch tells whether the
// collaborative signal took part; failed requests report BranchUnknown.
func RecordRecommendation(outcome, branch string, duration time.Duration) {
	RecommendRequests.WithLabelValues(outcome, branch).Inc()
	RecommendDuration.Observe(duration.Seconds())
}

// RecordCandidates records how many candidates a source contributed.
func RecordCandidates(source string, n int) {
	RecommendCandidates.WithLabelValues(source).Observe(float64(n))
}

// RecordSimilarityRebuild records a finished rebuild. result is success,
// error or skipped.
func RecordSimilarityRebuild(result string, duration time.Duration, items, edges int) {
	SimilarityRebuildsTotal.WithLabelValues(result).Inc()
	if result != "success" {
		return
	}
	SimilarityRebuildDuration.Observe(duration.Seconds())
	SimilarityGraphItems.Set(float64(items))
	SimilarityGraphEdges.Set(float64(edges))
}

// RecordPopularityAggregation records a finished aggregation run.
func RecordPopularityAggregation(result string, duration time.Duration, viewRows, purchaseRows int) {
	PopularityAggregationsTotal.WithLabelValues(result).Inc()
	if result != "success" {
		return
	}
	PopularityAggregationDuration.Observe(duration.Seconds())
	PopularityRowsUpserted.WithLabelValues("view").Add(float64(viewRows))
	PopularityRowsUpserted.WithLabelValues("purchase").Add(float64(purchaseRows))
}

// RecordEvent records an ingested (or failed) storefront event.
func RecordEvent(eventType string, err error) {
	if err != nil {
		EventsFailed.WithLabelValues(eventType).Inc()
		return
	}
	EventsIngested.WithLabelValues(eventType).Inc()
}

// RecordJobRun records a scheduled job execution.
func RecordJobRun(job, result string) {
	JobRuns.WithLabelValues(job, result).Inc()
}
