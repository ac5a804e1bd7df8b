package kinopoisk

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kinopoisk_requests_total",
			Help: "Remote catalog search requests by endpoint and outcome.",
		},
		[]string{"path", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kinopoisk_request_duration_seconds",
			Help:    "Remote catalog search request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

func observeRequest(path, outcome string, d time.Duration) {
	requestsTotal.WithLabelValues(path, outcome).Inc()
	requestDuration.WithLabelValues(path).Observe(d.Seconds())
}
