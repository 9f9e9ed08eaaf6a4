// Package metrics holds the Prometheus instruments for the API and the
// evaluation pipeline. All instruments register on the default registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dermalens_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dermalens_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dermalens_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Evaluation Metrics
	Evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dermalens_evaluations_total",
			Help: "Total number of profile evaluations",
		},
		[]string{"skin_type"},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dermalens_recommendation_results",
			Help:    "Number of products returned per recommendation",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		},
	)

	RoutineScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dermalens_routine_score",
			Help:    "Distribution of routine assessment scores",
			Buckets: prometheus.LinearBuckets(0, 20, 6),
		},
	)

	// Dataset Metrics
	CatalogProducts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dermalens_catalog_products",
			Help: "Number of products in the loaded catalog",
		},
	)

	SummaryCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dermalens_summary_cache_hits_total",
			Help: "Total number of dataset summary cache hits",
		},
	)

	SummaryCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dermalens_summary_cache_misses_total",
			Help: "Total number of dataset summary cache misses",
		},
	)
)

// RecordAPIRequest records one completed HTTP request
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
