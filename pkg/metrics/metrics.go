package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famodular_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// AccessChecks counts group/personal scope authorization decisions and
	// their outcome (allowed|denied|error).
	AccessChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famodular_access_checks_total",
			Help: "Total number of access gateway checks",
		},
		[]string{"scope", "result"},
	)

	// AIRequests counts outbound inference calls by kind and result.
	AIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famodular_ai_requests_total",
			Help: "Total number of AI inference requests",
		},
		[]string{"kind", "result"},
	)

	// MediaUploadBytes observes accepted media upload sizes.
	MediaUploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "famodular_media_upload_bytes",
			Help:    "Size distribution of accepted media uploads",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "famodular_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
