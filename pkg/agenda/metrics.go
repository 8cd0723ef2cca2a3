package agenda

import "time"

// Metrics defines the interface for tracking agenda operations.
type Metrics interface {
	// RecordAgendaQuery records one aggregation run: how long it took and
	// how many items it produced.
	RecordAgendaQuery(duration time.Duration, items int)

	// RecordExpansion records a per-series expansion by source type.
	RecordExpansion(itemType ItemType, occurrences int)

	// RecordSeriesDelete records a delete-mode transition.
	RecordSeriesDelete(mode DeleteMode)

	// RecordStoreOperation records the duration and status of a store call.
	RecordStoreOperation(operation string, duration time.Duration, err error)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordAgendaQuery(duration time.Duration, items int)                 {}
func (n *NoopMetrics) RecordExpansion(itemType ItemType, occurrences int)                  {}
func (n *NoopMetrics) RecordSeriesDelete(mode DeleteMode)                                  {}
func (n *NoopMetrics) RecordStoreOperation(operation string, duration time.Duration, err error) {}
