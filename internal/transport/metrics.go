package transport

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess          = "success"
	outcomeApplicationError = "application_error"
	outcomeTransportError   = "transport_error"
)

// Metrics records per-endpoint request counts and latencies. A nil *Metrics
// records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "symbio",
			Subsystem: "transport",
			Name:      "requests_total",
			Help:      "Requests issued to the marketplace backend, by outcome.",
		}, []string{"method", "path", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "symbio",
			Subsystem: "transport",
			Name:      "request_duration_seconds",
			Help:      "Round-trip latency of backend requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(method Method, path, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(string(method), path, outcome).Inc()
	m.duration.WithLabelValues(string(method), path).Observe(elapsed.Seconds())
}
