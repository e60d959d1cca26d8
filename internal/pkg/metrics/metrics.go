// Package metrics declares the prometheus collectors of the feed service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

var (
	// RecommendationCacheLookups counts cache lookups by algorithm and result.
	RecommendationCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_recommendation_cache_lookups_total",
			Help: "Recommendation cache lookups by algorithm and result",
		},
		[]string{"algorithm", "result"},
	)

	// RecommendationComputeDuration tracks recommender latency on cache misses.
	RecommendationComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_recommendation_compute_duration_seconds",
			Help:    "Time spent computing recommendations on a cache miss",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"algorithm"},
	)

	// RecommendationCacheInvalidations counts entries removed by explicit invalidation.
	RecommendationCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_recommendation_cache_invalidations_total",
			Help: "Recommendation cache entries invalidated",
		},
		[]string{"algorithm"},
	)

	// CacheSweepDeleted counts rows removed by the housekeeping sweep.
	CacheSweepDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_recommendation_cache_sweep_deleted_total",
			Help: "Expired recommendation cache rows deleted by the sweep",
		},
	)

	// CacheSweepFailures counts failed sweeps.
	CacheSweepFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_recommendation_cache_sweep_failures_total",
			Help: "Recommendation cache sweeps that returned an error",
		},
	)

	// ExploreRanked tracks how many posts each explore pass ranks.
	ExploreRanked = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "feed_explore_ranked_posts",
			Help:    "Number of posts ranked per explore request",
			Buckets: []float64{0, 1, 5, 10, 30, 50, 100},
		},
	)

	// SocialGraphBreakerState reports the accessor circuit breaker state (0 closed, 1 half-open, 2 open).
	SocialGraphBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_social_graph_breaker_state",
			Help: "Social graph accessor circuit breaker state",
		},
	)
)
