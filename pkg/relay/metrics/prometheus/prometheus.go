package prommetrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements relay.Metrics using Prometheus.
type Metrics struct {
	webhooksTotal  *prometheus.CounterVec
	sweepDuration  *prometheus.HistogramVec
	sweepItemTotal *prometheus.CounterVec
}

// NewMetrics creates a new Prometheus metrics implementation.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		webhooksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhooks_total",
			Help:      "Total number of webhook deliveries by provider and outcome.",
		}, []string{"provider", "outcome"}),

		sweepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of sync and renewal sweeps.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),

		sweepItemTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_items_total",
			Help:      "Items processed per sweep by outcome.",
		}, []string{"kind", "failed"}),
	}
}

func (m *Metrics) RecordWebhook(provider, outcome string) {
	m.webhooksTotal.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) RecordSweep(kind string, synced, failed int, duration time.Duration) {
	m.sweepDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.sweepItemTotal.WithLabelValues(kind, strconv.FormatBool(false)).Add(float64(synced))
	m.sweepItemTotal.WithLabelValues(kind, strconv.FormatBool(true)).Add(float64(failed))
}
