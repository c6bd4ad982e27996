package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sentencestats/domain/stats"
)

// RunMetrics collects per-run counters for the node_exporter textfile
// collector. Each run owns its registry.
type RunMetrics struct {
	registry *prometheus.Registry

	testsTotal      *prometheus.CounterVec
	recordsLoaded   prometheus.Gauge
	recordsSkipped  prometheus.Gauge
	runDuration     prometheus.Gauge
	lastRunFinished prometheus.Gauge
}

// NewRunMetrics registers the run's metrics on a fresh registry
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		testsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sentencestats_tests_total",
				Help: "Association tests computed, by pipeline, test and outcome.",
			},
			[]string{"pipeline", "test", "outcome"},
		),
		recordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentencestats_records_loaded",
			Help: "Sentencing records loaded from the input file.",
		}),
		recordsSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentencestats_records_skipped",
			Help: "Input rows skipped for a blank sentence year.",
		}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentencestats_run_duration_seconds",
			Help: "Wall time of the last batch run.",
		}),
		lastRunFinished: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sentencestats_last_run_timestamp_seconds",
			Help: "Unix time the last batch run finished.",
		}),
	}
	m.registry.MustRegister(m.testsTotal, m.recordsLoaded, m.recordsSkipped, m.runDuration, m.lastRunFinished)
	return m
}

// RecordLoad sets the loaded and skipped record gauges
func (m *RunMetrics) RecordLoad(loaded, skipped int) {
	m.recordsLoaded.Set(float64(loaded))
	m.recordsSkipped.Set(float64(skipped))
}

// RecordResults counts defined and undefined outcomes of one test kind
func (m *RunMetrics) RecordResults(pipeline string, kind stats.TestKind, results stats.CategoryResults) {
	for _, yr := range results {
		for _, o := range yr {
			outcome := "defined"
			if !o.Defined() {
				outcome = "undefined"
			}
			m.testsTotal.WithLabelValues(pipeline, string(kind), outcome).Inc()
		}
	}
}

// RecordRun stamps the run duration and finish time
func (m *RunMetrics) RecordRun(duration time.Duration, finished time.Time) {
	m.runDuration.Set(duration.Seconds())
	m.lastRunFinished.Set(float64(finished.Unix()))
}

// Gatherer exposes the registry, e.g. for tests
func (m *RunMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in text exposition format. The file is
// replaced atomically so a scraping collector never sees a partial file.
func (m *RunMetrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
