// Package metrics exports generation statistics to Prometheus
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"evoarena/internal/evolution"
)

// Metrics is an evolution observer backed by its own registry
type Metrics struct {
	registry *prometheus.Registry

	generation  *prometheus.GaugeVec
	fitness     *prometheus.GaugeVec
	selection   *prometheus.CounterVec
	calibration *prometheus.GaugeVec
	evaluation  *prometheus.HistogramVec
}

// New registers the evolution collectors (plus the Go runtime collectors)
// on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generation: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "evoarena",
			Name:      "generation",
			Help:      "Last evaluated generation.",
		}, []string{"run"}),
		fitness: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "evoarena",
			Name:      "fitness",
			Help:      "Fitness statistics of the last evaluated generation.",
		}, []string{"run", "stat"}),
		selection: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "evoarena",
			Name:      "selection_slots_total",
			Help:      "Population slots produced by each selection branch.",
		}, []string{"run", "branch"}),
		calibration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "evoarena",
			Name:      "calibration_score",
			Help:      "Champion score against reference players.",
		}, []string{"run", "reference"}),
		evaluation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "evoarena",
			Name:      "evaluation_seconds",
			Help:      "Time spent evaluating a generation.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"run"}),
	}
	m.registry.MustRegister(
		m.generation,
		m.fitness,
		m.selection,
		m.calibration,
		m.evaluation,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry holding the collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) OnGeneration(_ context.Context, s evolution.Summary) error {
	run := s.RunID

	m.generation.WithLabelValues(run).Set(float64(s.Generation))

	m.fitness.WithLabelValues(run, "best").Set(s.Best)
	m.fitness.WithLabelValues(run, "median").Set(s.Median)
	m.fitness.WithLabelValues(run, "mean").Set(s.Mean)
	m.fitness.WithLabelValues(run, "worst").Set(s.Worst)
	m.fitness.WithLabelValues(run, "stddev").Set(s.StdDev)

	// the primordial generation was not produced by selection
	if s.Generation > 0 {
		m.selection.WithLabelValues(run, "elite").Add(float64(s.Selection.Elite))
		m.selection.WithLabelValues(run, "crossover").Add(float64(s.Selection.Crossover))
		m.selection.WithLabelValues(run, "mutate_only").Add(float64(s.Selection.MutateOnly))
		m.selection.WithLabelValues(run, "reset").Add(float64(s.Selection.Reset))
	}

	for reference, score := range s.Calibration {
		m.calibration.WithLabelValues(run, reference).Set(score)
	}

	m.evaluation.WithLabelValues(run).Observe(s.EvaluationTime.Seconds())
	return nil
}
