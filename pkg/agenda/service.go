package agenda

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Config holds agenda service configuration.
type Config struct {
	// MaxOccurrencesPerSeries caps each series expansion (default: 1000).
	MaxOccurrencesPerSeries int

	// Logger is used for structured logging (default: NoopLogger).
	Logger Logger

	// Metrics is used for tracking agenda operations (default: NoopMetrics).
	Metrics Metrics
}

// Service aggregates the household's time-bearing entities into one ordered
// agenda and owns the recurring-event delete transitions.
type Service struct {
	store    Store
	config   Config
	expander Expander
}

// NewService creates an agenda service backed by the given store.
func NewService(store Store, config Config) (*Service, error) {
	if store == nil {
		return nil, ErrStoreUnavailable
	}

	if config.Logger == nil {
		config.Logger = &NoopLogger{}
	}
	if config.Metrics == nil {
		config.Metrics = &NoopMetrics{}
	}

	return &Service{
		store:    store,
		config:   config,
		expander: Expander{MaxOccurrences: config.MaxOccurrencesPerSeries},
	}, nil
}

// Agenda returns every concrete occurrence from every included source inside
// the window, ordered by start time with ties broken by type priority and
// source id. Events are always included; bills, tasks and birthdays follow
// the inclusion flags. Instances removed by exception records and instances
// past a series truncation never appear.
func (s *Service) Agenda(ctx context.Context, householdID uuid.UUID, w Window, inc Include) ([]Item, error) {
	if !w.Valid() {
		return nil, ErrInvalidWindow
	}
	started := time.Now()

	events, err := s.store.ListEvents(ctx, householdID, w)
	if err != nil {
		return nil, err
	}
	excRecords, err := s.store.ListExceptions(ctx, householdID)
	if err != nil {
		return nil, err
	}
	excs := newExceptionSet(excRecords)

	var streams [][]Item
	for _, ev := range events {
		items := eventItems(s.expander, ev, excs, w)
		s.config.Metrics.RecordExpansion(TypeEvent, len(items))
		streams = append(streams, items)
	}

	if inc.Bills {
		bills, err := s.store.ListBills(ctx, householdID)
		if err != nil {
			return nil, err
		}
		for _, b := range bills {
			items := billItems(s.expander, b, w)
			s.config.Metrics.RecordExpansion(TypeBill, len(items))
			streams = append(streams, items)
		}
	}

	if inc.Tasks {
		tasks, err := s.store.ListTasks(ctx, householdID)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			items := taskItems(s.expander, t, w)
			s.config.Metrics.RecordExpansion(TypeTask, len(items))
			streams = append(streams, items)
		}
	}

	if inc.Birthdays {
		contacts, err := s.store.ListContacts(ctx, householdID)
		if err != nil {
			return nil, err
		}
		for _, c := range contacts {
			items := birthdayItems(s.expander, c, w)
			s.config.Metrics.RecordExpansion(TypeBirthday, len(items))
			streams = append(streams, items)
		}
	}

	merged := mergeStreams(streams)
	s.config.Metrics.RecordAgendaQuery(time.Since(started), len(merged))
	s.config.Logger.Debug("agenda aggregated",
		Field{"household_id", householdID.String()},
		Field{"items", len(merged)},
	)
	return merged, nil
}

// DeleteEvent applies one of the series delete transitions:
//
//   - DeleteThis removes the single instance at instanceDate via an
//     exception record; the series stays active for other instances.
//   - DeleteThisAndFuture ends the series just before instanceDate; the
//     instance and everything after it stop appearing. Starting a
//     replacement series is the caller's concern.
//   - DeleteAll removes the series and all its exceptions. Terminal.
func (s *Service) DeleteEvent(ctx context.Context, eventID uuid.UUID, mode DeleteMode, instanceDate time.Time) error {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	if ev.Deleted {
		return ErrSeriesDeleted
	}

	switch mode {
	case DeleteThis:
		if err := s.store.AddException(ctx, EventException{EventID: eventID, Date: instanceDate}); err != nil {
			return err
		}

	case DeleteThisAndFuture:
		until := instanceDate
		ev.RepeatUntil = &until
		ev.UpdatedAt = time.Now().UTC()
		if err := s.store.PutEvent(ctx, ev); err != nil {
			return err
		}

	case DeleteAll:
		if err := s.store.DeleteEvent(ctx, eventID); err != nil {
			return err
		}

	default:
		return ErrInvalidDeleteMode
	}

	s.config.Metrics.RecordSeriesDelete(mode)
	s.config.Logger.Info("event series delete",
		Field{"event_id", eventID.String()},
		Field{"mode", string(mode)},
	)
	return nil
}

// GetEvent retrieves one event.
func (s *Service) GetEvent(ctx context.Context, eventID uuid.UUID) (*Event, error) {
	return s.store.GetEvent(ctx, eventID)
}

// PutEvent inserts or updates an event.
func (s *Service) PutEvent(ctx context.Context, ev *Event) error {
	if ev.UpdatedAt.IsZero() {
		ev.UpdatedAt = time.Now().UTC()
	}
	return s.store.PutEvent(ctx, ev)
}
