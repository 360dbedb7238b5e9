package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
// Tracks match outcomes and recognizer call latency.
type Metrics struct {
	Attempts           *prometheus.CounterVec
	RateLimited        prometheus.Counter
	RecognizerFailures *prometheus.CounterVec
	RecognizeDuration  prometheus.Histogram
}

// New creates a new Metrics instance with all verification metrics registered.
func New() *Metrics {
	return &Metrics{
		Attempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "facegate_verification_attempts_total",
			Help: "Total verification attempts by outcome",
		}, []string{"outcome"}),
		RateLimited: promauto.NewCounter(prometheus.CounterOpts{
			Name: "facegate_verification_rate_limited_total",
			Help: "Total verification attempts rejected by the per-subject rate limit",
		}),
		RecognizerFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "facegate_recognizer_failures_total",
			Help: "Total recognizer call failures by category",
		}, []string{"category"}),
		RecognizeDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "facegate_recognize_duration_seconds",
			Help:    "Duration of recognizer calls (verification critical path)",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// RecordAttempt records a verification attempt outcome
// (matched, wrong_person, low_confidence, no_face, multiple_faces).
func (m *Metrics) RecordAttempt(outcome string) {
	m.Attempts.WithLabelValues(outcome).Inc()
}

// RecordRateLimited records a verification attempt denied by the rate limit.
func (m *Metrics) RecordRateLimited() {
	m.RateLimited.Inc()
}

// RecordRecognizerFailure records a recognizer call failure by category.
func (m *Metrics) RecordRecognizerFailure(category string) {
	m.RecognizerFailures.WithLabelValues(category).Inc()
}

// ObserveRecognize records the duration of a recognizer call.
// Call with time.Now() at the start of the call.
func (m *Metrics) ObserveRecognize(start time.Time) {
	m.RecognizeDuration.Observe(time.Since(start).Seconds())
}
