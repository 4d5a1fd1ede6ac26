package prommetrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements usagekit.Metrics using Prometheus.
type Metrics struct {
	allowanceChecksTotal   *prometheus.CounterVec
	allowanceCheckDuration prometheus.Histogram
	usesTotal              *prometheus.CounterVec
	activationsTotal       *prometheus.CounterVec
	recordRepairsTotal     *prometheus.CounterVec
	rolloversTotal         prometheus.Counter
	storageOpsDuration     *prometheus.HistogramVec
	storageOpsErrors       *prometheus.CounterVec
}

// NewMetrics creates a new Prometheus metrics implementation.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		allowanceChecksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "allowance_checks_total",
			Help:      "Total number of allowance checks.",
		}, []string{"allowed"}),

		allowanceCheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "allowance_check_duration_seconds",
			Help:      "Latency of allowance checks.",
			Buckets:   prometheus.DefBuckets,
		}),

		usesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uses_total",
			Help:      "Total number of counted metered uses.",
		}, []string{"premium"}),

		activationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activations_total",
			Help:      "Total number of premium activation attempts.",
		}, []string{"method", "success"}),

		recordRepairsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_repairs_total",
			Help:      "Total number of silently repaired usage records.",
		}, []string{"reason"}),

		rolloversTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rollovers_total",
			Help:      "Total number of daily counter resets.",
		}),

		storageOpsDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Latency of storage operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		storageOpsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operation_errors_total",
			Help:      "Total number of storage operation errors.",
		}, []string{"operation"}),
	}
}

func (m *Metrics) RecordAllowanceCheck(_ string, allowed bool, duration time.Duration) {
	m.allowanceChecksTotal.WithLabelValues(strconv.FormatBool(allowed)).Inc()
	m.allowanceCheckDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordUse(_ string, premium bool) {
	m.usesTotal.WithLabelValues(strconv.FormatBool(premium)).Inc()
}

func (m *Metrics) RecordActivation(method string, success bool) {
	m.activationsTotal.WithLabelValues(method, strconv.FormatBool(success)).Inc()
}

func (m *Metrics) RecordRepair(reason string) {
	m.recordRepairsTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordRollover(_ string) {
	m.rolloversTotal.Inc()
}

func (m *Metrics) RecordStorageOperation(operation string, duration time.Duration, err error) {
	m.storageOpsDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.storageOpsErrors.WithLabelValues(operation).Inc()
	}
}

// DefaultMetrics returns a Metrics implementation using the default
// Prometheus registerer.
func DefaultMetrics(namespace string) *Metrics {
	return NewMetrics(prometheus.DefaultRegisterer, namespace)
}
