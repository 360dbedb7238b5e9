package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the attendance module.
// Tracks recorded checks, denials, and critical path durations.
type Metrics struct {
	Recorded      *prometheus.CounterVec
	Denied        *prometheus.CounterVec
	Idempotent    *prometheus.CounterVec
	CheckDuration prometheus.Histogram
}

// New creates a new Metrics instance with all attendance metrics registered.
func New() *Metrics {
	return &Metrics{
		Recorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "facegate_attendance_recorded_total",
			Help: "Total recorded check events by action and status",
		}, []string{"action", "status"}),
		Denied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "facegate_attendance_denied_total",
			Help: "Total denied attendance attempts by action and reason code",
		}, []string{"action", "code"}),
		Idempotent: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "facegate_attendance_idempotent_total",
			Help: "Total attempts answered from an already populated check slot",
		}, []string{"action"}),
		CheckDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "facegate_attendance_check_duration_seconds",
			Help:    "Duration of full check-in/check-out processing",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// RecordCheck records a successful check event.
func (m *Metrics) RecordCheck(action, status string) {
	m.Recorded.WithLabelValues(action, status).Inc()
}

// RecordDenied records a denied attempt.
func (m *Metrics) RecordDenied(action, code string) {
	m.Denied.WithLabelValues(action, code).Inc()
}

// RecordIdempotent records an attempt that found its slot already written.
func (m *Metrics) RecordIdempotent(action string) {
	m.Idempotent.WithLabelValues(action).Inc()
}

// ObserveCheck records the duration of a full check operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCheck(start time.Time) {
	m.CheckDuration.Observe(time.Since(start).Seconds())
}
