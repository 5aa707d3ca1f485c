// Package metrics exposes Prometheus metrics for generations and extractions.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/folio/pkg/folio"
	"github.com/jmylchreest/folio/pkg/generator"
)

// Generation outcomes.
const (
	OutcomeOK     = "ok"
	OutcomeStatus = "status_error"
	OutcomeError  = "error"
)

// Metrics records generation and extraction counters on its own registry.
type Metrics struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	extractions *prometheus.CounterVec
	durations   *prometheus.HistogramVec
}

// New creates and registers the folio collectors, plus the Go and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_generations_total",
				Help: "Total generations by backend and outcome",
			},
			[]string{"generator", "outcome"},
		),
		extractions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "folio_extractions_total",
				Help: "Extractions by matching rule (none when no HTML was found)",
			},
			[]string{"rule"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "folio_generation_duration_seconds",
				Help:    "Generation duration in seconds",
				Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"generator"},
		),
	}

	m.registry.MustRegister(
		m.generations,
		m.extractions,
		m.durations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// OnGenerate implements generator.Observer.
func (m *Metrics) OnGenerate(_ context.Context, event generator.Event) {
	outcome := OutcomeOK
	switch {
	case event.Err != nil:
		outcome = OutcomeError
	case event.StatusCode != 0 && (event.StatusCode < 200 || event.StatusCode >= 300):
		outcome = OutcomeStatus
	}

	m.generations.WithLabelValues(event.Generator, outcome).Inc()
	m.durations.WithLabelValues(event.Generator).Observe(event.Duration.Seconds())
}

// ObserveResult records which extraction rule matched. Results that never
// reached extraction are ignored.
func (m *Metrics) ObserveResult(r *folio.Result) {
	if r == nil || r.Rule == "" {
		return
	}
	m.extractions.WithLabelValues(r.Rule).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

var _ generator.Observer = (*Metrics)(nil)
