package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// pair-processing pipeline.
type Metrics struct {
	PairsSucceeded prometheus.Counter
	PairsFailed    prometheus.Counter
	PairsSkipped   prometheus.Counter
	PipelineRunning prometheus.Gauge

	PairDuration prometheus.Histogram

	// Per-failure-class counters. Labels: class={alignment,schema,source,io}.
	FailureClasses *prometheus.CounterVec
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PairsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ar_pipeline",
			Name:      "pairs_succeeded_total",
			Help:      "Manifest entries processed into predictor/target artifacts.",
		}),
		PairsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ar_pipeline",
			Name:      "pairs_failed_total",
			Help:      "Manifest entries that failed processing.",
		}),
		PairsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ar_pipeline",
			Name:      "pairs_skipped_total",
			Help:      "Manifest entries skipped because both artifacts already exist.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ar_pipeline",
			Name:      "running",
			Help:      "1 while the pair processor is active, 0 otherwise.",
		}),
		PairDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ar_pipeline",
			Name:      "pair_duration_seconds",
			Help:      "Duration of one extract-regrid-persist cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		FailureClasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ar_pipeline",
			Name:      "failures_total",
			Help:      "Processing failures by error class.",
		}, []string{"class"}),
	}

	prometheus.MustRegister(
		m.PairsSucceeded,
		m.PairsFailed,
		m.PairsSkipped,
		m.PipelineRunning,
		m.PairDuration,
		m.FailureClasses,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PairsSucceeded:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ar_pipeline", Name: "pairs_succeeded_total"}),
		PairsFailed:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ar_pipeline", Name: "pairs_failed_total"}),
		PairsSkipped:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "ar_pipeline", Name: "pairs_skipped_total"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "ar_pipeline", Name: "running"}),
		PairDuration:    prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "ar_pipeline", Name: "pair_duration_seconds"}),
		FailureClasses:  prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "ar_pipeline", Name: "failures_total"}, []string{"class"}),
	}
}
