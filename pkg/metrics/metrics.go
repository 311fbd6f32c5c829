package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Reminder dispatch
	RemindersSent   *prometheus.CounterVec
	RemindersFailed *prometheus.CounterVec
	TickDuration    prometheus.Histogram
	TickFailures    prometheus.Counter
	EligibleBatch   *prometheus.GaugeVec

	// Channel adapters
	ChannelSends *prometheus.CounterVec

	// Alerting
	OperatorAlerts   *prometheus.CounterVec
	LastTickUnixtime prometheus.Gauge

	// Maintenance
	PrunedRecords *prometheus.CounterVec
}

// New creates and registers all application metrics on the default registry.
func New(namespace string) *Metrics {
	return NewWithRegistry(namespace, prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metric set on a caller-provided registry;
// tests use this to avoid duplicate registration across cases.
func NewWithRegistry(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RemindersSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Reminders dispatched with at least one successful channel",
		}, []string{"class"}),
		RemindersFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_failed_total",
			Help:      "Reminder dispatch attempts where every channel failed",
		}, []string{"class"}),
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Duration of one scheduler reminder tick",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}),
		TickFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tick_failures_total",
			Help:      "Scheduler ticks that ended with a tick-level error",
		}),
		EligibleBatch: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "eligible_batch_size",
			Help:      "Appointments eligible per reminder class on the last tick",
		}, []string{"class"}),
		ChannelSends: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "channel_sends_total",
			Help:      "Channel adapter send attempts by channel and outcome (sent, or the classified failure cause)",
		}, []string{"channel", "status"}),
		OperatorAlerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operator_alerts_total",
			Help:      "Operator alerts fired by alert type",
		}, []string{"type"}),
		LastTickUnixtime: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_tick_timestamp_seconds",
			Help:      "Unix time of the last successful scheduler tick",
		}),
		PrunedRecords: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_records_total",
			Help:      "Records removed by retention maintenance",
		}, []string{"kind"}),
	}
}
