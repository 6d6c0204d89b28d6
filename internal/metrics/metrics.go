// Package metrics records draw cycles and data loads as Prometheus
// collectors on a private registry. A nil *Recorder is valid and records
// nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "covidviz"

// Recorder owns the dashboard collectors.
type Recorder struct {
	registry *prometheus.Registry

	drawCycles   *prometheus.CounterVec
	drawFailures *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	rowsLoaded   *prometheus.GaugeVec
	loadResults  *prometheus.CounterVec
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		drawCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_cycles_total",
			Help:      "Draw and update cycles run per chart.",
		}, []string{"chart", "op"}),
		drawFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draw_failures_total",
			Help:      "Cycles that left a chart in the failed state.",
		}, []string{"chart"}),
		loadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_load_seconds",
			Help:      "Time spent reading one data source.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"source"}),
		rowsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_records",
			Help:      "Records parsed from the last load of a source.",
		}, []string{"source"}),
		loadResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_loads_total",
			Help:      "Source loads by outcome.",
		}, []string{"source", "status"}),
	}
	r.registry.MustRegister(r.drawCycles, r.drawFailures, r.loadDuration, r.rowsLoaded, r.loadResults)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObserveDraw counts one draw ("draw") or update ("update") cycle and, when
// it failed, one failure.
func (r *Recorder) ObserveDraw(chart, op string, success bool) {
	if r == nil {
		return
	}
	r.drawCycles.WithLabelValues(chart, op).Inc()
	if !success {
		r.drawFailures.WithLabelValues(chart).Inc()
	}
}

// ObserveLoad records how long a source took and how many records it held.
func (r *Recorder) ObserveLoad(source string, success bool, duration time.Duration, records int) {
	if r == nil {
		return
	}
	status := "error"
	if success {
		status = "success"
		r.rowsLoaded.WithLabelValues(source).Set(float64(records))
	}
	r.loadResults.WithLabelValues(source, status).Inc()
	r.loadDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// WriteTextfile writes every collector in the node exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
