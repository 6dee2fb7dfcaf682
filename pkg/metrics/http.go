package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records requests served by the mock backend.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mock_backend_request_duration_seconds",
		Help:    "Duration of served requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mock_backend_requests_total",
		Help: "Served requests by route and status.",
	}, []string{"route", "status"})
	reg.MustRegister(duration, requests)
	return &HTTPMetrics{duration: duration, requests: requests}
}

func (m *HTTPMetrics) Observe(route string, status int, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
