package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels used for request metrics.
const (
	OutcomeSuccess      = "success"
	OutcomeUnauthorized = "unauthorized"
	OutcomeTransport    = "transport_error"
)

// Metrics receives gateway observations.
type Metrics interface {
	ObserveRequest(method, outcome string, d time.Duration)
	ObserveRefresh(result string, d time.Duration)
	SetPending(n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveRequest(string, string, time.Duration) {}
func (nopMetrics) ObserveRefresh(string, time.Duration)         {}
func (nopMetrics) SetPending(int)                               {}

// PrometheusMetrics implements Metrics with Prometheus collectors.
type PrometheusMetrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	pending         prometheus.Gauge
}

// NewPrometheusMetrics creates the gateway collectors and registers them with
// reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nearby_gateway_requests_total",
				Help: "Outbound API requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "nearby_gateway_request_duration_seconds",
				Help:    "Outbound API request duration in seconds",
				Buckets: []float64{.025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "nearby_gateway_refresh_total",
				Help: "Credential refresh calls by result",
			},
			[]string{"result"},
		),
		refreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "nearby_gateway_refresh_duration_seconds",
				Help:    "Credential refresh duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		pending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "nearby_gateway_refresh_pending",
				Help: "Requests waiting for the in-flight credential refresh",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.requestDuration, m.refreshes, m.refreshDuration, m.pending} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *PrometheusMetrics) ObserveRequest(method, outcome string, d time.Duration) {
	m.requests.WithLabelValues(method, outcome).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *PrometheusMetrics) ObserveRefresh(result string, d time.Duration) {
	m.refreshes.WithLabelValues(result).Inc()
	m.refreshDuration.Observe(d.Seconds())
}

func (m *PrometheusMetrics) SetPending(n int) {
	m.pending.Set(float64(n))
}
