// Package metrics provides Prometheus metrics for the cleaning runs and the query API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-worldstats/internal/model"
)

const namespace = "worldstats"

// Metrics holds all pipeline metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Counters
	RowsRead       *prometheus.CounterVec
	ValuesEmitted  *prometheus.CounterVec
	ValuesDropped  *prometheus.CounterVec
	RecordsWritten prometheus.Counter
	RunsTotal      *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec

	// Gauges
	Partitions   prometheus.Gauge
	LastRunStamp prometheus.Gauge

	// Histograms
	RunDuration   prometheus.Histogram
	StageDuration *prometheus.HistogramVec
	QueryDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates a metrics instance with its own registry.
// Runtime collectors are only added for long running processes.
func New(withRuntime bool) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RowsRead = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_read_total",
			Help:      "Raw country rows read per metric",
		},
		[]string{"metric"},
	)

	m.ValuesEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_emitted_total",
			Help:      "Cleaned (country, year) values per metric",
		},
		[]string{"metric"},
	)

	m.ValuesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "values_dropped_total",
			Help:      "Rows or cells removed during cleaning by reason",
		},
		[]string{"metric", "reason"},
	)

	m.RecordsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_written_total",
			Help:      "Fact table records written",
		},
	)

	m.RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Cleaning runs by final status",
		},
		[]string{"status"}, // "completed", "failed"
	)

	m.HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Query API requests by route and status code",
		},
		[]string{"route", "code"},
	)

	m.Partitions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "partitions",
			Help:      "Year partitions in the last published version",
		},
	)

	m.LastRunStamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed cleaning run",
		},
	)

	m.RunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a cleaning run",
			Buckets:   []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0, 300.0},
		},
	)

	m.StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time per cleaning stage",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
		[]string{"stage"},
	)

	m.QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Query API latency by route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	m.registry.MustRegister(
		m.RowsRead,
		m.ValuesEmitted,
		m.ValuesDropped,
		m.RecordsWritten,
		m.RunsTotal,
		m.HTTPRequests,
		m.Partitions,
		m.LastRunStamp,
		m.RunDuration,
		m.StageDuration,
		m.QueryDuration,
	)

	if withRuntime {
		m.registry.MustRegister(collectors.NewGoCollector())
		m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an HTTP handler for metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry in the node-exporter textfile format, for CLI runs
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// RecordSource adds one cleaned source to the counters.
func (m *Metrics) RecordSource(s model.SourceSummary) {
	if m == nil {
		return
	}
	metric := string(s.Metric)
	m.RowsRead.WithLabelValues(metric).Add(float64(s.RowsRead))
	m.ValuesEmitted.WithLabelValues(metric).Add(float64(s.ValuesEmitted))
	for reason, n := range s.Drops {
		m.ValuesDropped.WithLabelValues(metric, string(reason)).Add(float64(n))
	}
}

// RecordStage records the duration of one stage.
func (m *Metrics) RecordStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// RecordRun records the outcome of a run. summary is nil for failed runs.
func (m *Metrics) RecordRun(d time.Duration, summary *model.RunSummary) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
	if summary == nil {
		m.RunsTotal.WithLabelValues("failed").Inc()
		return
	}
	m.RunsTotal.WithLabelValues("completed").Inc()
	m.RecordsWritten.Add(float64(summary.RecordsWritten))
	m.Partitions.Set(float64(summary.Partitions))
	m.LastRunStamp.Set(float64(summary.StartedAt.Add(d).Unix()))
}

// RecordRequest records one API request.
func (m *Metrics) RecordRequest(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.QueryDuration.WithLabelValues(route).Observe(d.Seconds())
}
