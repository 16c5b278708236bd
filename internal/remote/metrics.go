package remote

import "github.com/prometheus/client_golang/prometheus"

var (
	// upstreamReqs counts profile API calls by operation and outcome
	// ("200", "404", ..., or "error" when no response arrived).
	upstreamReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of profile API requests.",
		},
		[]string{"op", "status"},
	)

	// upstreamLat records profile API latency in seconds by operation.
	upstreamLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of profile API requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

func init() {
	prometheus.MustRegister(upstreamReqs, upstreamLat)
}
