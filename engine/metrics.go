package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/errors"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/mapping"
	"github.com/WiesHerd/Provider-Survey-System-Aggregator-sub000/metric"
)

// engineMetrics tracks mutation outcomes and view sizes per entity kind.
// All methods are nil-safe so the engine runs unchanged with metrics
// disabled.
type engineMetrics struct {
	mutations *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	unmapped  *prometheus.GaugeVec
	mappings  *prometheus.GaugeVec
	learned   *prometheus.GaugeVec
}

func newEngineMetrics(registry *metric.Registry) (*engineMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &engineMetrics{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "surveymap",
			Subsystem: "engine",
			Name:      "mutations_total",
			Help:      "Mapping state mutations by kind, operation, and outcome",
		}, []string{"kind", "operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "surveymap",
			Subsystem: "engine",
			Name:      "operation_duration_seconds",
			Help:      "Mutation latency including persistence",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind", "operation"}),
		unmapped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "surveymap",
			Subsystem: "engine",
			Name:      "unmapped_labels",
			Help:      "Labels in the unmapped view",
		}, []string{"kind"}),
		mappings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "surveymap",
			Subsystem: "engine",
			Name:      "mappings",
			Help:      "Mappings in the mapped view",
		}, []string{"kind"}),
		learned: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "surveymap",
			Subsystem: "engine",
			Name:      "learned_entries",
			Help:      "Entries in the learned set",
		}, []string{"kind"}),
	}

	if err := registry.RegisterCounterVec("engine", "mutations", m.mutations); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("engine", "operation_duration", m.duration); err != nil {
		return nil, err
	}
	if err := registry.RegisterGaugeVec("engine", "unmapped_labels", m.unmapped); err != nil {
		return nil, err
	}
	if err := registry.RegisterGaugeVec("engine", "mappings", m.mappings); err != nil {
		return nil, err
	}
	if err := registry.RegisterGaugeVec("engine", "learned_entries", m.learned); err != nil {
		return nil, err
	}
	return m, nil
}

// record counts one operation outcome and observes its latency.
func (e *Engine) record(operation string, start time.Time, err error) {
	e.metrics.recordOperation(e.cfg.Kind, operation, start, err)
}

func (m *engineMetrics) recordOperation(kind mapping.Kind, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(string(kind), operation, statusLabel(err)).Inc()
	m.duration.WithLabelValues(string(kind), operation).Observe(time.Since(start).Seconds())
}

func (m *engineMetrics) setViewSizes(kind mapping.Kind, unmapped, mappings, learned int) {
	if m == nil {
		return
	}
	m.unmapped.WithLabelValues(string(kind)).Set(float64(unmapped))
	m.mappings.WithLabelValues(string(kind)).Set(float64(mappings))
	m.learned.WithLabelValues(string(kind)).Set(float64(learned))
}

func statusLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.IsInvalid(err):
		return "invalid"
	case errors.IsTransient(err):
		return "transient"
	case errors.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}
