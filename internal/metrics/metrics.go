package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wrlc/alma-item-checks/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ItemsReceived       prometheus.Counter
	ChecksEvaluated     *prometheus.CounterVec
	FixesApplied        *prometheus.CounterVec
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
	NotificationLatency *prometheus.HistogramVec
	ItemQueueDepth      prometheus.Gauge
	QueueDepthHigh      prometheus.Gauge
	QueueDepthNormal    prometheus.Gauge
	QueueDepthLow       prometheus.Gauge
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ItemsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "items_received_total",
			Help: "Total number of item-update webhook events accepted.",
		}),

		ChecksEvaluated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "checks_evaluated_total",
			Help: "Total number of check evaluations that found an issue, by outcome.",
		}, []string{"check", "outcome"}),

		FixesApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fixes_applied_total",
			Help: "Total number of automated item fixes written back to Alma.",
		}, []string{"check"}),

		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notification emails handed to the sender.",
		}, []string{"check"}),

		NotificationsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Total number of permanently failed notifications (retries exhausted).",
		}, []string{"check"}),

		NotificationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notification_processing_seconds",
			Help:    "Delivery latency from dequeue to sender-queue publish.",
			Buckets: prometheus.DefBuckets,
		}, []string{"check"}),

		ItemQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "item_queue_depth",
			Help: "Current number of webhook events awaiting the check engine.",
		}),
		QueueDepthHigh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notify_queue_depth_high",
			Help: "Current number of notifications in the high-priority tier.",
		}),
		QueueDepthNormal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notify_queue_depth_normal",
			Help: "Current number of notifications in the normal-priority tier.",
		}),
		QueueDepthLow: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "notify_queue_depth_low",
			Help: "Current number of notifications in the low-priority tier.",
		}),
	}

	reg.MustRegister(
		m.ItemsReceived,
		m.ChecksEvaluated,
		m.FixesApplied,
		m.NotificationsSent,
		m.NotificationsFailed,
		m.NotificationLatency,
		m.ItemQueueDepth,
		m.QueueDepthHigh,
		m.QueueDepthNormal,
		m.QueueDepthLow,
	)

	return m
}

// CheckEvaluated records that a check found an issue with the given outcome.
func (m *Metrics) CheckEvaluated(check string, outcome domain.Outcome) {
	m.ChecksEvaluated.WithLabelValues(check, string(outcome)).Inc()
}

// FixApplied records a successful automated fix written back to Alma.
func (m *Metrics) FixApplied(check string) {
	m.FixesApplied.WithLabelValues(check).Inc()
}

// WorkerHooks returns the metric callback functions expected by worker.MetricHooks.
// Centralises the prometheus observation calls so worker.go stays import-free.
func (m *Metrics) WorkerHooks() (
	onSent func(check string, latency time.Duration),
	onFailed func(check string),
) {
	onSent = func(check string, latency time.Duration) {
		m.NotificationsSent.WithLabelValues(check).Inc()
		m.NotificationLatency.WithLabelValues(check).Observe(latency.Seconds())
	}
	onFailed = func(check string) {
		m.NotificationsFailed.WithLabelValues(check).Inc()
	}
	return
}
