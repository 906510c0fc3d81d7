// Package metrics holds the Prometheus instruments for test runs.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RunsTotal     *prometheus.CounterVec
	FailuresTotal *prometheus.CounterVec
	PValues       *prometheus.HistogramVec
}

// New registers the run instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hypotest_runs_total",
			Help: "Completed hypothesis test runs by kind and tail.",
		}, []string{"kind", "tail"}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "hypotest_run_failures_total",
			Help: "Rejected or failed hypothesis test runs by kind and reason.",
		}, []string{"kind", "reason"}),
		PValues: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hypotest_p_value",
			Help:    "Distribution of reported p-values.",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 0.75, 1},
		}, []string{"kind"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
