package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "brasil_beauty"

// unmatchedRoute labels requests that hit no registered route, so scanners
// probing random paths cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

var (
	httpReqs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpLat = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	httpInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "http_requests_inflight",
		Help:      "Requests currently being served.",
	})

	httpRespSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "http_response_size_bytes",
		Help:      "HTTP response size by method and route.",
		// Profile listings with photo URLs land in the 10-250 KiB range.
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	}, []string{"method", "route"})

	sseStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "sse_streams_active",
		Help:      "Open server-sent event streams.",
	})
)

// Metrics records count, latency and response size per registered route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		httpReqs.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpLat.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, route).Observe(float64(size))
		}
	}
}

// TrackStream counts an open SSE stream until the returned func is called.
func TrackStream() (done func()) {
	sseStreams.Inc()
	return sseStreams.Dec
}
