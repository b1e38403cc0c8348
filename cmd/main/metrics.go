package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains the generator's Prometheus metrics.
type Metrics struct {
	registry *prometheus.Registry

	GenerationRequests *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	ChainWords         prometheus.Histogram
	ChainStates        prometheus.Histogram
}

// NewMetrics creates the metrics on a private registry, together with the Go
// runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		GenerationRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "parrot",
				Subsystem: "generation",
				Name:      "requests_total",
				Help:      "Total number of generation requests by outcome",
			},
			[]string{"outcome"},
		),

		GenerationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "parrot",
				Subsystem: "generation",
				Name:      "duration_seconds",
				Help:      "Time to build a chain and generate its sentences",
				Buckets:   prometheus.DefBuckets,
			},
		),

		ChainWords: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "parrot",
				Subsystem: "chain",
				Name:      "words",
				Help:      "Distinct words in each built chain",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),

		ChainStates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "parrot",
				Subsystem: "chain",
				Name:      "states",
				Help:      "Distinct states in each built chain",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
	}

	m.registry.MustRegister(
		m.GenerationRequests,
		m.GenerationDuration,
		m.ChainWords,
		m.ChainStates,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// observeRun records the outcome of one generation request.
func (m *Metrics) observeRun(run *Run, seconds float64) {
	m.GenerationRequests.WithLabelValues(run.Outcome).Inc()
	m.GenerationDuration.Observe(seconds)
	if run.Outcome == outcomeOK || run.Outcome == outcomeEmptyModel {
		m.ChainWords.Observe(float64(run.Words))
		m.ChainStates.Observe(float64(run.States))
	}
}
