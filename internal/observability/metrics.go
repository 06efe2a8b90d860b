package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private prometheus registry. All methods are safe on a nil
// receiver so callers can run with metrics disabled.
type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	approvals *prometheus.CounterVec
	releases  *prometheus.CounterVec
	rejected  *prometheus.CounterVec

	registry *prometheus.Registry
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "config_center_api_requests_total",
				Help: "Total API requests by method/route/status.",
			},
			[]string{"method", "route", "status"},
		),
		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "config_center_api_request_duration_seconds",
				Help:    "API request latency in seconds by method/route/status.",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route", "status"},
		),
		apiInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "config_center_api_inflight_requests",
				Help: "API requests currently being served.",
			},
		),
		approvals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "config_center_approvals_total",
				Help: "Approval records created by stage and decision.",
			},
			[]string{"stage", "decision"},
		),
		releases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "config_center_releases_total",
				Help: "Successful releases by environment.",
			},
			[]string{"environment"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "config_center_rejected_transitions_total",
				Help: "Approval or release requests refused by the governance rules, by reason.",
			},
			[]string{"reason"},
		),
		registry: registry,
	}
	registry.MustRegister(
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.approvals,
		m.releases,
		m.rejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	code := strconv.Itoa(status)
	m.apiRequests.WithLabelValues(method, route, code).Inc()
	m.apiLatency.WithLabelValues(method, route, code).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) IncApproval(stage, decision string) {
	if m == nil {
		return
	}
	m.approvals.WithLabelValues(stage, decision).Inc()
}

func (m *Metrics) IncRelease(environment string) {
	if m == nil {
		return
	}
	m.releases.WithLabelValues(environment).Inc()
}

func (m *Metrics) IncRejectedTransition(reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(reason).Inc()
}
