package dashboard

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result outcomes recorded by Metrics.
const (
	OutcomeApplied = "applied"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
)

// Metrics counts fetches and applied results on a private registry.
// A nil *Metrics records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FallbackTotal prometheus.Counter
	ResultsTotal  *prometheus.CounterVec
}

// NewMetrics registers the dashboard collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lmsdash_fetch_total",
			Help: "Backend requests by endpoint and status",
		}, []string{"endpoint", "status"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lmsdash_fetch_duration_seconds",
			Help:    "Backend request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		FallbackTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lmsdash_fallback_total",
			Help: "Per-course trends rebuilt from raw records",
		}),
		ResultsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lmsdash_results_total",
			Help: "View results by outcome",
		}, []string{"view", "outcome"}),
	}
	m.registry.MustRegister(m.FetchTotal, m.FetchDuration, m.FallbackTotal, m.ResultsTotal)
	return m
}

// ObserveFetch matches api.Observer.
func (m *Metrics) ObserveFetch(path string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.FetchTotal.WithLabelValues(path, status).Inc()
	m.FetchDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

func (m *Metrics) recordFallback() {
	if m == nil {
		return
	}
	m.FallbackTotal.Inc()
}

func (m *Metrics) recordResult(view ViewID, outcome string) {
	if m == nil {
		return
	}
	m.ResultsTotal.WithLabelValues(string(view), outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
