package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalog"

// Inference Prometheus metrics. Components receive them explicitly; nothing reads these globals
// outside main and tests.
var (
	ForecastRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_runs_total",
			Help:      "Forecast runs by outcome",
		},
		[]string{"outcome"}, // ok / insufficient_data / invalid_price / invalid_series / error
	)

	LexicalRebuildsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lexical_rebuilds_total",
			Help:      "Lexical model rebuilds triggered by catalog version changes",
		},
	)

	LexicalDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lexical_documents",
			Help:      "Documents in the current lexical model",
		},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"kind"}, // text / category / image
	)

	ImageFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_fetch_total",
			Help:      "Image downloads by status",
		},
		[]string{"status"}, // ok / http_error / too_large / aborted / rejected / error
	)

	VisualIndexWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visual_index_writes_total",
			Help:      "Image feature indexing attempts by result",
		},
		[]string{"result"}, // written / unchanged / error
	)
)

var registerOnce sync.Once

// RegisterCatalogMetrics registers the inference metrics with the default registry. Safe to call twice.
func RegisterCatalogMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ForecastRunsTotal,
			LexicalRebuildsTotal,
			LexicalDocuments,
			SearchDuration,
			ImageFetchTotal,
			VisualIndexWritesTotal,
		)
	})
}
