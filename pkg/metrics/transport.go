package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TransportMetrics records outbound calls made by the storefront client.
type TransportMetrics struct {
	duration       *prometheus.HistogramVec
	requests       *prometheus.CounterVec
	sessionExpired prometheus.Counter
	streamFrames   *prometheus.CounterVec
}

// NewTransportMetrics registers the transport metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewTransportMetrics(reg prometheus.Registerer) *TransportMetrics {
	if reg == nil {
		return &TransportMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_request_duration_seconds",
		Help:    "Duration of backend requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_requests_total",
		Help: "Backend requests by method and status class.",
	}, []string{"method", "status"})
	sessionExpired := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_session_expired_total",
		Help: "Responses that invalidated the held bearer token.",
	})
	streamFrames := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_stream_frames_total",
		Help: "Decoded stream frames by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, requests, sessionExpired, streamFrames)
	return &TransportMetrics{
		duration:       duration,
		requests:       requests,
		sessionExpired: sessionExpired,
		streamFrames:   streamFrames,
	}
}

// ObserveRequest records one completed call. status 0 means no response arrived.
func (m *TransportMetrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
	m.requests.WithLabelValues(method, StatusClass(status)).Inc()
}

// IncSessionExpired counts one authorization failure.
func (m *TransportMetrics) IncSessionExpired() {
	if m == nil || m.sessionExpired == nil {
		return
	}
	m.sessionExpired.Inc()
}

// IncStreamFrame counts a decoded ("ok") or skipped ("malformed") frame.
func (m *TransportMetrics) IncStreamFrame(outcome string) {
	if m == nil || m.streamFrames == nil {
		return
	}
	m.streamFrames.WithLabelValues(outcome).Inc()
}

// StatusClass collapses a status code into 2xx/4xx/5xx, or "error" when no response arrived.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
