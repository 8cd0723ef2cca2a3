package relay

import "time"

// Metrics defines the interface for tracking relay operations.
type Metrics interface {
	// RecordWebhook tracks a webhook delivery by provider and outcome.
	RecordWebhook(provider, outcome string)

	// RecordSweep tracks one sweep run.
	RecordSweep(kind string, synced, failed int, duration time.Duration)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordWebhook(provider, outcome string)                       {}
func (n *NoopMetrics) RecordSweep(kind string, synced, failed int, d time.Duration) {}
