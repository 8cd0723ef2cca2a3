// Package memory provides an in-memory implementation of the agenda.Store interface.
// This implementation is primarily intended for testing and development.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PapaJax20/orbyt/pkg/agenda"
)

// Storage implements agenda.Store using in-memory maps
type Storage struct {
	mu            sync.RWMutex
	events        map[uuid.UUID]*agenda.Event
	exceptions    map[uuid.UUID]map[time.Time]bool
	bills         map[uuid.UUID]*agenda.Bill
	tasks         map[uuid.UUID]*agenda.Task
	contacts      map[uuid.UUID]*agenda.Contact
	subscriptions map[string]*agenda.Subscription
	financeItems  map[uuid.UUID]*agenda.FinanceItem
	seen          map[string]time.Time
}

// New creates a new in-memory storage adapter
func New() *Storage {
	return &Storage{
		events:        make(map[uuid.UUID]*agenda.Event),
		exceptions:    make(map[uuid.UUID]map[time.Time]bool),
		bills:         make(map[uuid.UUID]*agenda.Bill),
		tasks:         make(map[uuid.UUID]*agenda.Task),
		contacts:      make(map[uuid.UUID]*agenda.Contact),
		subscriptions: make(map[string]*agenda.Subscription),
		financeItems:  make(map[uuid.UUID]*agenda.FinanceItem),
		seen:          make(map[string]time.Time),
	}
}

// ListEvents implements agenda.Store
func (s *Storage) ListEvents(ctx context.Context, householdID uuid.UUID, w agenda.Window) ([]agenda.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []agenda.Event
	for _, ev := range s.events {
		if ev.HouseholdID != householdID || ev.Deleted {
			continue
		}
		// Series with an end bound entirely before the window cannot
		// produce occurrences; everything else is handed to the expander.
		if ev.RepeatUntil != nil && !ev.RepeatUntil.After(w.Start) && ev.StartAt.Before(w.Start) {
			continue
		}
		out = append(out, *ev)
	}
	return out, nil
}

// ListExceptions implements agenda.Store
func (s *Storage) ListExceptions(ctx context.Context, householdID uuid.UUID) ([]agenda.EventException, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []agenda.EventException
	for eventID, dates := range s.exceptions {
		ev, ok := s.events[eventID]
		if !ok || ev.HouseholdID != householdID {
			continue
		}
		for date := range dates {
			out = append(out, agenda.EventException{EventID: eventID, Date: date})
		}
	}
	return out, nil
}

// ListBills implements agenda.Store
func (s *Storage) ListBills(ctx context.Context, householdID uuid.UUID) ([]agenda.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []agenda.Bill
	for _, b := range s.bills {
		if b.HouseholdID == householdID {
			out = append(out, *b)
		}
	}
	return out, nil
}

// ListTasks implements agenda.Store
func (s *Storage) ListTasks(ctx context.Context, householdID uuid.UUID) ([]agenda.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []agenda.Task
	for _, t := range s.tasks {
		if t.HouseholdID == householdID {
			out = append(out, *t)
		}
	}
	return out, nil
}

// ListContacts implements agenda.Store
func (s *Storage) ListContacts(ctx context.Context, householdID uuid.UUID) ([]agenda.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []agenda.Contact
	for _, c := range s.contacts {
		if c.HouseholdID == householdID {
			out = append(out, *c)
		}
	}
	return out, nil
}

// GetEvent implements agenda.Store
func (s *Storage) GetEvent(ctx context.Context, id uuid.UUID) (*agenda.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.events[id]
	if !ok {
		return nil, agenda.ErrEventNotFound
	}

	// Return a copy to prevent external mutations
	evCopy := *ev
	return &evCopy, nil
}

// PutEvent implements agenda.Store
func (s *Storage) PutEvent(ctx context.Context, ev *agenda.Event) error {
	if ev == nil || ev.ID == uuid.Nil {
		return fmt.Errorf("invalid event")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Store a copy to prevent external mutations
	evCopy := *ev
	s.events[ev.ID] = &evCopy
	return nil
}

// AddException implements agenda.Store
func (s *Storage) AddException(ctx context.Context, exc agenda.EventException) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dates, ok := s.exceptions[exc.EventID]
	if !ok {
		dates = make(map[time.Time]bool)
		s.exceptions[exc.EventID] = dates
	}
	dates[exc.Date.UTC()] = true
	return nil
}

// DeleteEvent implements agenda.Store
func (s *Storage) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.events, id)
	delete(s.exceptions, id)
	return nil
}

// PutBill stores a bill. Not part of agenda.Store; used for seeding.
func (s *Storage) PutBill(b *agenda.Bill) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bCopy := *b
	s.bills[b.ID] = &bCopy
}

// PutTask stores a task. Not part of agenda.Store; used for seeding.
func (s *Storage) PutTask(t *agenda.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tCopy := *t
	s.tasks[t.ID] = &tCopy
}

// PutContact stores a contact. Not part of agenda.Store; used for seeding.
func (s *Storage) PutContact(c *agenda.Contact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cCopy := *c
	s.contacts[c.ID] = &cCopy
}

// GetSubscription implements agenda.Store
func (s *Storage) GetSubscription(ctx context.Context, channelID, resourceID string) (*agenda.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subscriptions[subscriptionKey(channelID, resourceID)]
	if !ok {
		return nil, agenda.ErrSubscriptionNotFound
	}

	subCopy := *sub
	return &subCopy, nil
}

// PutSubscription implements agenda.Store
func (s *Storage) PutSubscription(ctx context.Context, sub *agenda.Subscription) error {
	if sub == nil || sub.ChannelID == "" || sub.ResourceID == "" {
		return fmt.Errorf("invalid subscription")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	subCopy := *sub
	s.subscriptions[subscriptionKey(sub.ChannelID, sub.ResourceID)] = &subCopy
	return nil
}

// ListSubscriptions implements agenda.Store
func (s *Storage) ListSubscriptions(ctx context.Context) ([]agenda.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []agenda.Subscription
	for _, sub := range s.subscriptions {
		out = append(out, *sub)
	}
	return out, nil
}

// ListSubscriptionsExpiring implements agenda.Store
func (s *Storage) ListSubscriptionsExpiring(ctx context.Context, from, to time.Time) ([]agenda.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []agenda.Subscription
	for _, sub := range s.subscriptions {
		if sub.ExpiresAt.Before(from) || sub.ExpiresAt.After(to) {
			continue
		}
		out = append(out, *sub)
	}
	return out, nil
}

// ListActiveFinanceItems implements agenda.Store
func (s *Storage) ListActiveFinanceItems(ctx context.Context) ([]agenda.FinanceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []agenda.FinanceItem
	for _, it := range s.financeItems {
		if it.Active {
			out = append(out, *it)
		}
	}
	return out, nil
}

// GetFinanceItem implements agenda.Store
func (s *Storage) GetFinanceItem(ctx context.Context, id uuid.UUID) (*agenda.FinanceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.financeItems[id]
	if !ok {
		return nil, agenda.ErrFinanceItemNotFound
	}

	itCopy := *it
	return &itCopy, nil
}

// PutFinanceItem stores a finance item. Not part of agenda.Store; used for seeding.
func (s *Storage) PutFinanceItem(it *agenda.FinanceItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	itCopy := *it
	s.financeItems[it.ID] = &itCopy
}

// SaveFinanceCursor implements agenda.Store
func (s *Storage) SaveFinanceCursor(ctx context.Context, itemID uuid.UUID, cursor string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.financeItems[itemID]
	if !ok {
		return agenda.ErrFinanceItemNotFound
	}
	it.Cursor = cursor
	return nil
}

// DeactivateFinanceItem implements agenda.Store
func (s *Storage) DeactivateFinanceItem(ctx context.Context, itemID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.financeItems[itemID]
	if !ok {
		return agenda.ErrFinanceItemNotFound
	}
	it.Active = false
	return nil
}

// Seen reports whether key was recorded within ttl, recording it if not.
// Satisfies the relay's notification deduper.
func (s *Storage) Seen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if at, ok := s.seen[key]; ok && now.Sub(at) < ttl {
		return true, nil
	}
	s.seen[key] = now
	return false, nil
}

// subscriptionKey generates a unique key for a push channel pair
func subscriptionKey(channelID, resourceID string) string {
	return fmt.Sprintf("%s:%s", channelID, resourceID)
}

// Clear removes all data (useful for testing)
func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(map[uuid.UUID]*agenda.Event)
	s.exceptions = make(map[uuid.UUID]map[time.Time]bool)
	s.bills = make(map[uuid.UUID]*agenda.Bill)
	s.tasks = make(map[uuid.UUID]*agenda.Task)
	s.contacts = make(map[uuid.UUID]*agenda.Contact)
	s.subscriptions = make(map[string]*agenda.Subscription)
	s.financeItems = make(map[uuid.UUID]*agenda.FinanceItem)
	s.seen = make(map[string]time.Time)
}
