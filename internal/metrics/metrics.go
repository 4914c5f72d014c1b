// Package metrics holds the Prometheus collectors for summaries and renders.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sources label the origin of a computed summary.
const (
	SourceAPI    = "api"
	SourceMCP    = "mcp"
	SourceExport = "export"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	summaries *prometheus.CounterVec
	dropped   prometheus.Counter
	render    prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trainingload_summaries_total",
			Help: "Session summaries computed, by source.",
		}, []string{"source"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trainingload_drills_dropped_total",
			Help: "Drill rows ignored because they had no name.",
		}),
		render: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "trainingload_render_duration_seconds",
			Help:    "Time spent rendering summary images.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
	}
	reg.MustRegister(m.summaries, m.dropped, m.render)
	for _, s := range []string{SourceAPI, SourceMCP, SourceExport} {
		m.summaries.WithLabelValues(s)
	}
	return m
}

// Summary records one computed summary and the rows it dropped.
func (m *Metrics) Summary(source string, dropped int) {
	if m == nil {
		return
	}
	m.summaries.WithLabelValues(source).Inc()
	if dropped > 0 {
		m.dropped.Add(float64(dropped))
	}
}

// Rendered records the time since start as one render.
func (m *Metrics) Rendered(start time.Time) {
	if m == nil {
		return
	}
	m.render.Observe(time.Since(start).Seconds())
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for collection by the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
