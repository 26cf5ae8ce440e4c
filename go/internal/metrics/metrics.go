// Package metrics provides Prometheus instrumentation for the workflows.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mcdev12/recruit/go/internal/apperr"
)

// Metrics tracks workflow outcomes, notification fan-out and discovery.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	OperationsTotal      *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
	NotificationsEmitted *prometheus.CounterVec
	NotificationFailures *prometheus.CounterVec
	DiscoveryResults     prometheus.Histogram
	DiscoveryDegraded    prometheus.Counter
	CandidateCache       *prometheus.CounterVec
}

// New registers all metrics on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recruit_operations_total",
			Help: "Workflow operations by outcome code (ok on success)",
		}, []string{"operation", "outcome"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recruit_operation_duration_seconds",
			Help:    "Duration of workflow operations including the storage transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		NotificationsEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recruit_notifications_emitted_total",
			Help: "Notifications written to the outbox",
		}, []string{"type"}),
		NotificationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recruit_notification_failures_total",
			Help: "Notifications dropped because the outbox insert failed",
		}, []string{"type"}),
		DiscoveryResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "recruit_discovery_results",
			Help:    "Number of candidates returned per discovery query",
			Buckets: []float64{0, 1, 5, 10, 20, 30, 50},
		}),
		DiscoveryDegraded: f.NewCounter(prometheus.CounterOpts{
			Name: "recruit_discovery_degraded_total",
			Help: "Discovery queries answered with an empty list after a storage error",
		}),
		CandidateCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recruit_candidate_cache_total",
			Help: "Candidate cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveOperation records the outcome and duration of one operation.
// Call with time.Now() taken at the start of the operation.
func (m *Metrics) ObserveOperation(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(apperr.CodeOf(err))
	}
	m.OperationsTotal.WithLabelValues(op, outcome).Inc()
	m.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncNotificationEmitted(kind string) {
	if m == nil {
		return
	}
	m.NotificationsEmitted.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncNotificationFailure(kind string) {
	if m == nil {
		return
	}
	m.NotificationFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveDiscovery(results int) {
	if m == nil {
		return
	}
	m.DiscoveryResults.Observe(float64(results))
}

func (m *Metrics) IncDiscoveryDegraded() {
	if m == nil {
		return
	}
	m.DiscoveryDegraded.Inc()
}

// IncCandidateCache counts a cache lookup; result is hit, miss or error.
func (m *Metrics) IncCandidateCache(result string) {
	if m == nil {
		return
	}
	m.CandidateCache.WithLabelValues(result).Inc()
}
