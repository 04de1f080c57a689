// Package metrics holds the prometheus instrumentation for the Solr client
// and the gateway HTTP server. Collectors are registered explicitly (no
// init()) so tests and embedders can use their own registries.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics instruments outgoing Solr requests.
type ClientMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewClientMetrics creates and registers the Solr request collectors.
func NewClientMetrics(reg prometheus.Registerer) (*ClientMetrics, error) {
	m := &ClientMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "solrq",
				Name:      "solr_requests_total",
				Help:      "Total number of Solr requests",
			},
			[]string{"handler", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "solrq",
				Name:      "solr_request_duration_seconds",
				Help:      "Solr request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"handler"},
		),
	}
	if err := reg.Register(m.requestsTotal); err != nil {
		return nil, err
	}
	if err := reg.Register(m.requestDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// Observe records one Solr request. A zero status means the request never
// produced an HTTP response (connection failure or timeout).
func (m *ClientMetrics) Observe(handler string, status int, elapsed time.Duration) {
	label := "error"
	if status != 0 {
		label = strconv.Itoa(status)
	}
	m.requestsTotal.WithLabelValues(handler, label).Inc()
	m.requestDuration.WithLabelValues(handler).Observe(elapsed.Seconds())
}
