package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

// Metrics implements agenda.Metrics using Prometheus.
type Metrics struct {
	agendaQueryDuration prometheus.Histogram
	agendaItemsTotal    prometheus.Histogram
	expansionsTotal     *prometheus.CounterVec
	expansionSize       *prometheus.HistogramVec
	seriesDeletesTotal  *prometheus.CounterVec
	storeOpsDuration    *prometheus.HistogramVec
	storeOpsErrors      *prometheus.CounterVec
}

// NewMetrics creates a new Prometheus metrics implementation.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		agendaQueryDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agenda_query_duration_seconds",
			Help:      "Latency of agenda aggregation queries.",
			Buckets:   prometheus.DefBuckets,
		}),

		agendaItemsTotal: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agenda_query_items",
			Help:      "Distribution of agenda result sizes.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000},
		}),

		expansionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_expansions_total",
			Help:      "Total number of series expansions by source type.",
		}, []string{"type"}),

		expansionSize: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "series_expansion_occurrences",
			Help:      "Distribution of occurrences produced per series expansion.",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000},
		}, []string{"type"}),

		seriesDeletesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_deletes_total",
			Help:      "Total number of series delete transitions by mode.",
		}, []string{"mode"}),

		storeOpsDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Latency of store operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		storeOpsErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operation_errors_total",
			Help:      "Total number of store operation errors.",
		}, []string{"operation"}),
	}
}

func (m *Metrics) RecordAgendaQuery(duration time.Duration, items int) {
	m.agendaQueryDuration.Observe(duration.Seconds())
	m.agendaItemsTotal.Observe(float64(items))
}

func (m *Metrics) RecordExpansion(itemType agenda.ItemType, occurrences int) {
	m.expansionsTotal.WithLabelValues(string(itemType)).Inc()
	m.expansionSize.WithLabelValues(string(itemType)).Observe(float64(occurrences))
}

func (m *Metrics) RecordSeriesDelete(mode agenda.DeleteMode) {
	m.seriesDeletesTotal.WithLabelValues(string(mode)).Inc()
}

func (m *Metrics) RecordStoreOperation(operation string, duration time.Duration, err error) {
	m.storeOpsDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		m.storeOpsErrors.WithLabelValues(operation).Inc()
	}
}
