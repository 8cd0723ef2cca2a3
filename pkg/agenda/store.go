package agenda

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence boundary for households, integrations and
// background sync bookkeeping. All methods use concrete types from this
// package to avoid import cycles.
type Store interface {
	// ListEvents returns the household's events whose series could produce
	// an occurrence inside the window. Soft-deleted series are excluded.
	ListEvents(ctx context.Context, householdID uuid.UUID, w Window) ([]Event, error)

	// ListExceptions returns every instance-removal record for the
	// household's events.
	ListExceptions(ctx context.Context, householdID uuid.UUID) ([]EventException, error)

	// ListBills returns the household's bills.
	ListBills(ctx context.Context, householdID uuid.UUID) ([]Bill, error)

	// ListTasks returns the household's open tasks.
	ListTasks(ctx context.Context, householdID uuid.UUID) ([]Task, error)

	// ListContacts returns the household's contacts with a stored birthday.
	ListContacts(ctx context.Context, householdID uuid.UUID) ([]Contact, error)

	// GetEvent retrieves one event.
	// Returns ErrEventNotFound when the id has no row.
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)

	// PutEvent inserts or updates an event.
	PutEvent(ctx context.Context, ev *Event) error

	// AddException records the removal of one instance of a recurring
	// event. Recording the same instance twice is a no-op.
	AddException(ctx context.Context, exc EventException) error

	// DeleteEvent removes an event and all its exception records.
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	// GetSubscription looks up a push channel by its identifying pair.
	// Returns ErrSubscriptionNotFound for unknown pairs; webhook callers
	// treat that as a no-op, never an error.
	GetSubscription(ctx context.Context, channelID, resourceID string) (*Subscription, error)

	// PutSubscription inserts or updates a push channel registration.
	PutSubscription(ctx context.Context, sub *Subscription) error

	// ListSubscriptions returns every registered push channel.
	ListSubscriptions(ctx context.Context) ([]Subscription, error)

	// ListSubscriptionsExpiring returns subscriptions with
	// from <= ExpiresAt <= to. Already-expired channels are not returned;
	// they are re-registered out of band, not renewed.
	ListSubscriptionsExpiring(ctx context.Context, from, to time.Time) ([]Subscription, error)

	// ListActiveFinanceItems returns every linked financial account that
	// is still active, across households.
	ListActiveFinanceItems(ctx context.Context) ([]FinanceItem, error)

	// GetFinanceItem retrieves one linked financial account.
	// Returns ErrFinanceItemNotFound when the id has no row.
	GetFinanceItem(ctx context.Context, id uuid.UUID) (*FinanceItem, error)

	// SaveFinanceCursor advances an item's sync cursor after a successful
	// sync run.
	SaveFinanceCursor(ctx context.Context, itemID uuid.UUID, cursor string) error

	// DeactivateFinanceItem flags an item whose provider credentials were
	// revoked; deactivated items are skipped by future sweeps.
	DeactivateFinanceItem(ctx context.Context, itemID uuid.UUID) error
}
