package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Eligibility calculation metrics
	EligibilityCalculated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refund_eligibility_calculated_total",
			Help: "Total number of refund eligibility calculations",
		},
		[]string{"airline", "eligible"},
	)

	RefundAmount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refund_amount",
			Help:    "Computed refund amount distribution in native currency units",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 50, 100, 500},
		},
		[]string{"airline"},
	)

	// Policy resolution metrics
	PolicyFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_fetch_total",
			Help: "Total number of policy resolutions by source and outcome",
		},
		[]string{"source", "status"},
	)

	PolicyFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "policy_fetch_duration_seconds",
			Help:    "Remote policy fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	PolicyCacheHit = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "policy_cache_hit_total",
			Help: "Total number of policy cache hits",
		},
	)

	PolicyCacheMiss = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "policy_cache_miss_total",
			Help: "Total number of policy cache misses",
		},
	)

	// Submission metrics
	RefundSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refund_submitted_total",
			Help: "Total number of refund submissions",
		},
		[]string{"status"},
	)
)

// ObserveHTTPRequest records an HTTP request with its duration
func ObserveHTTPRequest(method, endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// ObservePolicyFetch records a remote policy fetch with its duration
func ObservePolicyFetch(status string, duration time.Duration) {
	PolicyFetchTotal.WithLabelValues("remote", status).Inc()
	PolicyFetchDuration.WithLabelValues(status).Observe(duration.Seconds())
}
