package outbox

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records relay activity. A nil *Metrics records nothing.
type Metrics struct {
	Published      *prometheus.CounterVec
	PublishLatency *prometheus.HistogramVec
	Attempts       *prometheus.CounterVec
	Batches        prometheus.Histogram
	Lag            prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Published: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recruit_outbox_published_total",
			Help: "Notifications handed to the broker by outcome",
		}, []string{"type", "status"}),
		PublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recruit_outbox_publish_seconds",
			Help:    "Time spent publishing one notification including retries",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "recruit_outbox_publish_attempts_total",
			Help: "Individual publish attempts",
		}, []string{"status"}),
		Batches: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "recruit_outbox_batch_size",
			Help:    "Rows claimed per fallback sweep",
			Buckets: []float64{0, 1, 10, 25, 50, 100, 250},
		}),
		Lag: f.NewGauge(prometheus.GaugeOpts{
			Name: "recruit_outbox_unsent",
			Help: "Unsent notifications at the last health check",
		}),
	}
}

func (m *Metrics) recordPublish(kind string, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(kind, status(err)).Inc()
	m.PublishLatency.WithLabelValues(kind).Observe(took.Seconds())
}

func (m *Metrics) recordAttempt(err error) {
	if m == nil {
		return
	}
	m.Attempts.WithLabelValues(status(err)).Inc()
}

func (m *Metrics) recordBatch(claimed int) {
	if m == nil {
		return
	}
	m.Batches.Observe(float64(claimed))
}

func (m *Metrics) recordLag(unsent int64) {
	if m == nil {
		return
	}
	m.Lag.Set(float64(unsent))
}

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
