// Package relay bridges external push notifications and scheduled triggers
// into household data syncs. It terminates provider webhooks (Google calendar
// push, Stripe billing), authenticates cron callbacks, and runs the periodic
// finance-sync and subscription-renewal sweeps.
package relay

import (
	"context"
	"time"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

const (
	defaultDedupeTTL        = 24 * time.Hour
	defaultRenewalLookahead = 24 * time.Hour
	maxWebhookBodyBytes     = 256 * 1024
)

// Deduper records provider notification keys so redeliveries can be dropped.
// Implementations must be safe for concurrent use.
type Deduper interface {
	// Seen reports whether key was recorded within ttl, recording it if not.
	Seen(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Billing receives premium-state changes derived from billing webhooks.
type Billing interface {
	SetPremium(ctx context.Context, householdID string, active bool) error
}

// Config holds relay configuration.
type Config struct {
	// CronSecret authenticates scheduler callbacks on the cron endpoints.
	CronSecret string

	// StripeWebhookSecret verifies Stripe webhook signatures. Empty disables
	// the Stripe endpoint.
	StripeWebhookSecret string

	// DedupeTTL bounds how long notification keys are remembered
	// (default: 24h). Providers redeliver on timeout well inside that.
	DedupeTTL time.Duration

	// RenewalLookahead is how far ahead of expiry subscriptions are renewed
	// (default: 24h).
	RenewalLookahead time.Duration

	// Logger is used for structured logging (default: NoopLogger).
	Logger agenda.Logger

	// Metrics is used for tracking relay operations (default: NoopMetrics).
	Metrics Metrics
}

// Relay exposes the webhook and cron HTTP handlers plus the sweep loops.
type Relay struct {
	store    agenda.Store
	calendar CalendarProvider
	finance  FinanceProvider
	deduper  Deduper
	billing  Billing
	config   Config
}

// New creates a relay backed by the given store and providers. The deduper
// and billing hooks are optional; without a deduper every delivery is
// processed, which is safe because syncs are idempotent.
func New(store agenda.Store, calendar CalendarProvider, finance FinanceProvider, deduper Deduper, config Config) (*Relay, error) {
	if store == nil {
		return nil, agenda.ErrStoreUnavailable
	}

	if calendar == nil {
		calendar = UnimplementedCalendarProvider{}
	}
	if finance == nil {
		finance = UnimplementedFinanceProvider{}
	}
	if config.DedupeTTL <= 0 {
		config.DedupeTTL = defaultDedupeTTL
	}
	if config.RenewalLookahead <= 0 {
		config.RenewalLookahead = defaultRenewalLookahead
	}
	if config.Logger == nil {
		config.Logger = &agenda.NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}

	return &Relay{
		store:    store,
		calendar: calendar,
		finance:  finance,
		deduper:  deduper,
		config:   config,
	}, nil
}

// WithBilling attaches the premium-state hook used by the Stripe endpoint.
func (rl *Relay) WithBilling(b Billing) *Relay {
	rl.billing = b
	return rl
}
