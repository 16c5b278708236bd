package query

import "github.com/prometheus/client_golang/prometheus"

// Lookup kinds used as the "kind" label.
const (
	kindList   = "list"
	kindModel  = "model"
	kindSearch = "search"
)

var (
	lookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_lookups_total",
			Help: "Profile query cache lookups by kind and result (hit, miss, shared, error).",
		},
		[]string{"kind", "result"},
	)
	retriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "query_model_retries_total",
			Help: "Transient failures of single-profile lookups that triggered a retry.",
		},
	)
)

func init() {
	prometheus.MustRegister(lookupsTotal, retriesTotal)
}
