package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gapfill"

// Metrics holds the Prometheus counters, histograms, and gauges for the fill pipeline.
type Metrics struct {
	DocumentsConsumed       prometheus.Counter
	DocumentsProduced       prometheus.Counter
	FillErrors              prometheus.Counter
	ObservationsSynthesized prometheus.Counter
	PipelineRunning         prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// FillPasses observes the sort-and-scan passes per document.
	FillPasses prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.DocumentsConsumed,
		m.DocumentsProduced,
		m.FillErrors,
		m.ObservationsSynthesized,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.FillPasses,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DocumentsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_consumed_total",
			Help:      "Total documents read from the source topic.",
		}),
		DocumentsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_produced_total",
			Help:      "Total filled documents written to the sink topic.",
		}),
		FillErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fill_errors_total",
			Help:      "Total documents rejected as malformed or non-convergent.",
		}),
		ObservationsSynthesized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_synthesized_total",
			Help:      "Total placeholder observations inserted into gaps.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of documents per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-fill-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		FillPasses: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fill_passes",
			Help:      "Sort-and-scan passes needed to fill one document.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
}
