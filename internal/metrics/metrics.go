package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Scheduler metrics
	SchedulerTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pueue_scheduler_tick_duration_seconds",
			Help:    "Duration of a single scheduler tick",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 15),
		},
	)

	SchedulerAdmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueue_scheduler_admitted_total",
			Help: "Total number of tasks admitted to run, by group",
		},
		[]string{"group"},
	)

	SchedulerPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pueue_scheduler_panics_total",
			Help: "Total number of scheduler ticks that recovered from a panic",
		},
	)

	// Supervisor metrics
	SupervisorSpawnTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueue_supervisor_spawn_total",
			Help: "Total number of task spawn attempts, by outcome",
		},
		[]string{"outcome"},
	)

	SupervisorSignalTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueue_supervisor_signal_total",
			Help: "Total number of signals delivered to supervised process groups",
		},
		[]string{"signal"},
	)

	// Request handler metrics
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueue_requests_total",
			Help: "Total number of client requests handled, by type and outcome",
		},
		[]string{"type", "outcome"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pueue_request_duration_seconds",
			Help:    "Duration of request handling, by type",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	// Query engine metrics
	QueryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pueue_query_duration_seconds",
			Help:    "Duration of query plan application",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
		},
	)

	// State gauges, refreshed every 5 seconds by the daemon's gauge loop
	TasksByStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pueue_tasks_by_status",
			Help: "Current number of tasks, by group and status",
		},
		[]string{"group", "status"},
	)

	// Dashboard websocket metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pueue_websocket_connections",
			Help: "Current number of connected dashboard websocket clients",
		},
	)

	WebSocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pueue_websocket_messages_total",
			Help: "Total number of events broadcast to dashboard websocket clients, by event type",
		},
		[]string{"event_type"},
	)

	// Debug HTTP surface metrics
	DebugRateLimitRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pueue_debug_ratelimit_rejections_total",
			Help: "Total number of debug HTTP requests rejected by the per-client rate limiter",
		},
	)
)

// RecordRequest records a completed request handler invocation.
func RecordRequest(requestType, outcome string, durationSeconds float64) {
	RequestsTotal.WithLabelValues(requestType, outcome).Inc()
	RequestDuration.WithLabelValues(requestType).Observe(durationSeconds)
}

// RecordSchedulerTick records the wall-clock cost of one scheduler tick.
func RecordSchedulerTick(durationSeconds float64) {
	SchedulerTickDuration.Observe(durationSeconds)
}

// RecordAdmission records a task being admitted into a group's slots.
func RecordAdmission(group string) {
	SchedulerAdmittedTotal.WithLabelValues(group).Inc()
}

// SetTasksByStatus replaces the gauge for a group/status pair.
func SetTasksByStatus(group, status string, count float64) {
	TasksByStatus.WithLabelValues(group, status).Set(count)
}

// SetWebSocketConnections replaces the dashboard websocket connection count.
func SetWebSocketConnections(count float64) {
	WebSocketConnections.Set(count)
}

// RecordWebSocketMessage records one event broadcast to dashboard clients.
func RecordWebSocketMessage(eventType string) {
	WebSocketMessagesTotal.WithLabelValues(eventType).Inc()
}

// RecordDebugRateLimitRejection records one debug HTTP request turned away
// by the per-client rate limiter.
func RecordDebugRateLimitRejection() {
	DebugRateLimitRejectionsTotal.Inc()
}
