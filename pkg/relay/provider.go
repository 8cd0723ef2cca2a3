package relay

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

// ErrAuthRevoked is returned by providers when the linked account's
// credentials are no longer valid. The sweep deactivates the item so it is
// skipped until the user relinks.
var ErrAuthRevoked = errors.New("relay: provider authorization revoked")

// ErrNotConfigured is returned by the unimplemented providers.
var ErrNotConfigured = errors.New("relay: provider not configured")

// CalendarProvider talks to an external calendar service.
type CalendarProvider interface {
	// SyncAccount performs an incremental pull for one integration account.
	SyncAccount(ctx context.Context, accountID uuid.UUID) error

	// RenewSubscription re-registers a push channel before it expires and
	// returns the replacement registration.
	RenewSubscription(ctx context.Context, sub agenda.Subscription) (*agenda.Subscription, error)
}

// FinanceProvider talks to an external transactions aggregator.
type FinanceProvider interface {
	// SyncItem pulls transactions for one linked account starting at the
	// stored cursor and returns the next cursor. Returns ErrAuthRevoked when
	// the provider rejects the item's credentials.
	SyncItem(ctx context.Context, item agenda.FinanceItem) (string, error)
}

// UnimplementedCalendarProvider fails every call with ErrNotConfigured.
type UnimplementedCalendarProvider struct{}

func (UnimplementedCalendarProvider) SyncAccount(context.Context, uuid.UUID) error {
	return ErrNotConfigured
}

func (UnimplementedCalendarProvider) RenewSubscription(context.Context, agenda.Subscription) (*agenda.Subscription, error) {
	return nil, ErrNotConfigured
}

// UnimplementedFinanceProvider fails every call with ErrNotConfigured.
type UnimplementedFinanceProvider struct{}

func (UnimplementedFinanceProvider) SyncItem(context.Context, agenda.FinanceItem) (string, error) {
	return "", ErrNotConfigured
}
