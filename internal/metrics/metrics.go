// Package metrics holds the Prometheus collectors for site builds.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/drew/stratsite/internal/model"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	strategiesIndexed prometheus.Gauge
	datesIndexed      *prometheus.GaugeVec
	artifactsWritten  *prometheus.CounterVec
	parseErrors       *prometheus.CounterVec
	buildDuration     prometheus.Histogram
}

// NewRegistry creates a new metrics registry with all metrics registered.
// Runtime collectors are left out since the output is a one-shot textfile.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		Registry: reg,

		strategiesIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "stratsite_strategies_indexed",
				Help: "Number of strategies in the last built index",
			},
		),
		datesIndexed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stratsite_dates_indexed",
				Help: "Number of dated reports per strategy in the last built index",
			},
			[]string{"strategy"},
		),
		artifactsWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stratsite_artifacts_written_total",
				Help: "Total number of files written, by backend",
			},
			[]string{"backend"},
		),
		parseErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stratsite_result_parse_errors_total",
				Help: "Total number of result files that could not be read or parsed",
			},
			[]string{"strategy"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stratsite_build_duration_seconds",
				Help:    "Site build duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),
	}

	reg.MustRegister(r.strategiesIndexed)
	reg.MustRegister(r.datesIndexed)
	reg.MustRegister(r.artifactsWritten)
	reg.MustRegister(r.parseErrors)
	reg.MustRegister(r.buildDuration)

	return r
}

// ObserveIndex records the size of a freshly built index.
func (r *Registry) ObserveIndex(idx *model.Index) {
	r.datesIndexed.Reset()
	r.strategiesIndexed.Set(float64(len(idx.Strategies)))
	for _, s := range idx.Strategies {
		r.datesIndexed.WithLabelValues(s.Key).Set(float64(len(s.Dates)))
	}
}

// AddArtifacts counts files written by a backend.
func (r *Registry) AddArtifacts(backend string, n int) {
	r.artifactsWritten.WithLabelValues(backend).Add(float64(n))
}

// RecordParseError counts a bad result file.
func (r *Registry) RecordParseError(strategy string) {
	r.parseErrors.WithLabelValues(strategy).Inc()
}

// RecordBuild records a finished build.
func (r *Registry) RecordBuild(duration time.Duration) {
	r.buildDuration.Observe(duration.Seconds())
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.Registry)
}
