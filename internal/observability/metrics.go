package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "theater_wx"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// weather engine and its ingest pipeline.
type Metrics struct {
	RequestsConsumed prometheus.Counter
	ReportsProduced  prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Decode metrics.
	DecodePasses    *prometheus.CounterVec   // labels: format={grib2,fmap}, outcome={success,error}
	DecodeDuration  *prometheus.HistogramVec // labels: format
	GribMessages    *prometheus.CounterVec   // labels: param
	Diagnostics     *prometheus.CounterVec   // labels: kind
	SnapshotVersion prometheus.Gauge

	// NOMADS metrics.
	NomadsRequests    *prometheus.CounterVec // labels: outcome={success,error}
	NomadsCache       *prometheus.CounterVec // labels: result={hit,miss}
	NomadsAPIDuration prometheus.Histogram
	NomadsEnabled     prometheus.Gauge
}

func build(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_requests_consumed_total",
			Help:      help("Total ingest requests read from the source topic."),
		}),
		ReportsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_produced_total",
			Help:      help("Total station reports written to the sink topic."),
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      help("Total ingest requests that failed to load."),
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 when the pipeline is active, 0 when shut down."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      help("Number of ingest requests per batch extracted from Kafka."),
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      help("Duration of a complete batch extract-transform-load cycle."),
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		DecodePasses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_passes_total",
			Help:      help("Decode passes by format and outcome."),
		}, []string{"format", "outcome"}),
		DecodeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decode_duration_seconds",
			Help:      help("Duration of one decode pass."),
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"format"}),
		GribMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grib2_messages_total",
			Help:      help("GRIB2 messages decoded by parameter."),
		}, []string{"param"}),
		Diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grib2_diagnostics_total",
			Help:      help("GRIB2 parse diagnostics by kind."),
		}, []string{"kind"}),
		SnapshotVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_version",
			Help:      help("Layout version of the published snapshot, 0 when none."),
		}),
		NomadsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nomads_requests_total",
			Help:      help("NOMADS filter requests by outcome."),
		}, []string{"outcome"}),
		NomadsCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nomads_cache_total",
			Help:      help("NOMADS product cache lookups by result."),
		}, []string{"result"}),
		NomadsAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "nomads_api_duration_seconds",
			Help:      help("NOMADS filter request duration in seconds."),
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		NomadsEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "nomads_enabled",
			Help:      help("1 when NOMADS fetching is enabled, 0 otherwise."),
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := build(true)
	prometheus.MustRegister(
		m.RequestsConsumed,
		m.ReportsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.DecodePasses,
		m.DecodeDuration,
		m.GribMessages,
		m.Diagnostics,
		m.SnapshotVersion,
		m.NomadsRequests,
		m.NomadsCache,
		m.NomadsAPIDuration,
		m.NomadsEnabled,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return build(false)
}
