package builder

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Row outcomes recorded per table
const (
	rowsApplied  = "applied"
	rowsSkipped  = "skipped"
	rowsFiltered = "filtered"
)

// Metrics counts table loads for one or more builds. A nil *Metrics records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	RowsTotal         *prometheus.CounterVec
	TableLoadsTotal   *prometheus.CounterVec
	TableLoadDuration *prometheus.HistogramVec
	Templates         *prometheus.GaugeVec
}

// NewMetrics creates the build metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RowsTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topobuild_rows_total",
			Help: "Table rows by outcome",
		},
		[]string{"table", "outcome"},
	)

	m.TableLoadsTotal = promauto.With(m.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topobuild_table_loads_total",
			Help: "Table loads by status",
		},
		[]string{"table", "status"},
	)

	m.TableLoadDuration = promauto.With(m.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topobuild_table_load_duration_seconds",
			Help:    "Table load duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"table"},
	)

	m.Templates = promauto.With(m.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "topobuild_templates",
			Help: "Templates held in the registries",
		},
		[]string{"kind"},
	)

	return m
}

// Gatherer exposes the metrics registry
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the metrics in text exposition format, for the node
// exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) recordRows(table, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsTotal.WithLabelValues(table, outcome).Add(float64(n))
}

func (m *Metrics) recordTable(table, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.TableLoadsTotal.WithLabelValues(table, status).Inc()
	if status != StatusAbsent {
		m.TableLoadDuration.WithLabelValues(table).Observe(d.Seconds())
	}
}

func (m *Metrics) setTemplates(kind string, n int) {
	if m == nil {
		return
	}
	m.Templates.WithLabelValues(kind).Set(float64(n))
}
