package agenda

import "errors"

var (
	// ErrStoreUnavailable is returned when no store was provided.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidWindow is returned for a zero or inverted query window.
	ErrInvalidWindow = errors.New("invalid window")

	// ErrEventNotFound is returned when an event id has no row.
	ErrEventNotFound = errors.New("event not found")

	// ErrSeriesDeleted is returned when mutating an already-deleted series.
	ErrSeriesDeleted = errors.New("series deleted")

	// ErrInvalidDeleteMode is returned for an unrecognized delete mode.
	ErrInvalidDeleteMode = errors.New("invalid delete mode")

	// ErrSubscriptionNotFound is returned when a channel/resource pair has
	// no stored subscription. Webhook callers treat this as a no-op.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrFinanceItemNotFound is returned when a finance item id has no row.
	ErrFinanceItemNotFound = errors.New("finance item not found")
)
