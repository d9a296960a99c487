// Package metrics provides Prometheus metrics for the result page generator.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pass outcome label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Manager manages all Prometheus metrics for the generator.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	passes          *prometheus.CounterVec
	passDuration    prometheus.Histogram
	queryDuration   *prometheus.HistogramVec
	pagesWritten    *prometheus.CounterVec
	errors          *prometheus.CounterVec
	classes         prometheus.Gauge
	lastSuccessUnix prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager()
}

// NewManager creates a new metrics manager on its own registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "qehtml",
		subsystem:        "generator",
		histogramBuckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(collectors.NewGoCollector())
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.passes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "passes_total",
		Help:      "Generation passes by outcome",
	}, []string{"result"})

	m.passDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pass_duration_seconds",
		Help:      "Wall time of one full generation pass",
		Buckets:   m.histogramBuckets,
	})

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "query_duration_seconds",
		Help:      "Database query latency by query name",
		Buckets:   m.histogramBuckets,
	}, []string{"query"})

	m.pagesWritten = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pages_written_total",
		Help:      "Rendered output files by report kind",
	}, []string{"kind"})

	m.errors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_total",
		Help:      "Errors by component",
	}, []string{"component"})

	m.classes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classes",
		Help:      "Number of classes in the last pass",
	})

	m.lastSuccessUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_success_unixtime",
		Help:      "Unix time of the last successful pass",
	})
}

// Registry returns the manager's registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordPass records the outcome and duration of one generation pass.
func RecordPass(result string, d time.Duration) {
	globalManager.passes.WithLabelValues(result).Inc()
	globalManager.passDuration.Observe(d.Seconds())
	if result == ResultSuccess {
		globalManager.lastSuccessUnix.Set(float64(time.Now().Unix()))
	}
}

// RecordQuery records the latency of a named database query.
func RecordQuery(query string, d time.Duration) {
	globalManager.queryDuration.WithLabelValues(query).Observe(d.Seconds())
}

// RecordPageWritten increments the written-pages counter for a report kind.
func RecordPageWritten(kind string) {
	globalManager.pagesWritten.WithLabelValues(kind).Inc()
}

// RecordError increments the error counter for a component.
func RecordError(component string) {
	globalManager.errors.WithLabelValues(component).Inc()
}

// UpdateClasses sets the class count gauge.
func UpdateClasses(n int) {
	globalManager.classes.Set(float64(n))
}

// GetRegistry returns the global registry.
func GetRegistry() *prometheus.Registry {
	return globalManager.registry
}

// Handler serves the global registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(globalManager.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the global registry for the node_exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, globalManager.registry); err != nil {
		return fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	return nil
}
