package internal

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts run outcomes in a private registry. A CLI run has nothing
// to scrape, so the registry is written out in node_exporter textfile format.
type Metrics struct {
	Registry *prometheus.Registry

	FilesTotal       *prometheus.CounterVec
	TimestampSources *prometheus.CounterVec
	TagWriteDuration prometheus.Histogram
	LastRunTimestamp prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapsync_files_total",
				Help: "Media files processed, by outcome",
			},
			[]string{"outcome"},
		),
		TimestampSources: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapsync_timestamp_source_total",
				Help: "Inferred timestamps, by provenance",
			},
			[]string{"source"},
		),
		TagWriteDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "snapsync_tag_write_duration_seconds",
				Help:    "Duration of one exiftool invocation",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		LastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "snapsync_last_run_timestamp_seconds",
				Help: "Unix time the last run finished",
			},
		),
	}
	m.Registry.MustRegister(m.FilesTotal, m.TimestampSources, m.TagWriteDuration, m.LastRunTimestamp)
	return m
}

func (m *Metrics) OnResult(r Result) {
	m.FilesTotal.WithLabelValues(string(r.Outcome)).Inc()
	if r.Inferred {
		m.TimestampSources.WithLabelValues(string(r.Guess.Source)).Inc()
	}
	if r.TagDuration > 0 {
		m.TagWriteDuration.Observe(r.TagDuration.Seconds())
	}
}

// WriteTextfile stamps the finish time and writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	m.LastRunTimestamp.SetToCurrentTime()
	return prometheus.WriteToTextfile(path, m.Registry)
}
