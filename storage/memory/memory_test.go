package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PapaJax20/orbyt/pkg/agenda"
	"github.com/PapaJax20/orbyt/storage/memory"
)

func TestStorage_PutGetEvent(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	ev := &agenda.Event{
		ID:          uuid.New(),
		HouseholdID: uuid.New(),
		Title:       "Piano lesson",
		StartAt:     time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC),
		EndAt:       time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC),
		Rule:        "FREQ=WEEKLY",
	}
	if err := storage.PutEvent(ctx, ev); err != nil {
		t.Fatalf("PutEvent failed: %v", err)
	}

	got, err := storage.GetEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if got.Title != "Piano lesson" {
		t.Errorf("Expected title %q, got %q", "Piano lesson", got.Title)
	}

	// Mutating the returned copy must not affect the stored row
	got.Title = "changed"
	again, err := storage.GetEvent(ctx, ev.ID)
	if err != nil {
		t.Fatalf("GetEvent failed: %v", err)
	}
	if again.Title != "Piano lesson" {
		t.Errorf("Stored event mutated through returned copy: %q", again.Title)
	}
}

func TestStorage_GetEvent_NotFound(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	_, err := storage.GetEvent(ctx, uuid.New())
	if err != agenda.ErrEventNotFound {
		t.Errorf("Expected ErrEventNotFound, got %v", err)
	}
}

func TestStorage_ListEvents_FiltersDeletedAndOtherHouseholds(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	household := uuid.New()
	other := uuid.New()
	w := agenda.Window{
		Start: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC),
	}

	keep := &agenda.Event{ID: uuid.New(), HouseholdID: household, Title: "keep", StartAt: w.Start}
	deleted := &agenda.Event{ID: uuid.New(), HouseholdID: household, Title: "gone", StartAt: w.Start, Deleted: true}
	foreign := &agenda.Event{ID: uuid.New(), HouseholdID: other, Title: "foreign", StartAt: w.Start}
	for _, ev := range []*agenda.Event{keep, deleted, foreign} {
		if err := storage.PutEvent(ctx, ev); err != nil {
			t.Fatalf("PutEvent failed: %v", err)
		}
	}

	events, err := storage.ListEvents(ctx, household, w)
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if events[0].ID != keep.ID {
		t.Errorf("Expected event %s, got %s", keep.ID, events[0].ID)
	}
}

func TestStorage_AddException_Idempotent(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	household := uuid.New()
	ev := &agenda.Event{ID: uuid.New(), HouseholdID: household, Title: "standup",
		StartAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), Rule: "FREQ=DAILY"}
	if err := storage.PutEvent(ctx, ev); err != nil {
		t.Fatalf("PutEvent failed: %v", err)
	}

	exc := agenda.EventException{EventID: ev.ID, Date: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)}
	for i := 0; i < 2; i++ {
		if err := storage.AddException(ctx, exc); err != nil {
			t.Fatalf("AddException failed: %v", err)
		}
	}

	excs, err := storage.ListExceptions(ctx, household)
	if err != nil {
		t.Fatalf("ListExceptions failed: %v", err)
	}
	if len(excs) != 1 {
		t.Errorf("Expected 1 exception after duplicate add, got %d", len(excs))
	}
}

func TestStorage_DeleteEvent_RemovesExceptions(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	household := uuid.New()
	ev := &agenda.Event{ID: uuid.New(), HouseholdID: household, Title: "gym",
		StartAt: time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC), Rule: "FREQ=WEEKLY"}
	if err := storage.PutEvent(ctx, ev); err != nil {
		t.Fatalf("PutEvent failed: %v", err)
	}
	exc := agenda.EventException{EventID: ev.ID, Date: ev.StartAt.AddDate(0, 0, 7)}
	if err := storage.AddException(ctx, exc); err != nil {
		t.Fatalf("AddException failed: %v", err)
	}

	if err := storage.DeleteEvent(ctx, ev.ID); err != nil {
		t.Fatalf("DeleteEvent failed: %v", err)
	}

	if _, err := storage.GetEvent(ctx, ev.ID); err != agenda.ErrEventNotFound {
		t.Errorf("Expected ErrEventNotFound after delete, got %v", err)
	}
	excs, err := storage.ListExceptions(ctx, household)
	if err != nil {
		t.Fatalf("ListExceptions failed: %v", err)
	}
	if len(excs) != 0 {
		t.Errorf("Expected no exceptions after delete, got %d", len(excs))
	}
}

func TestStorage_Subscriptions(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	sub := &agenda.Subscription{
		ChannelID:  "chan-1",
		ResourceID: "res-1",
		Provider:   "google",
		AccountID:  uuid.New(),
		ExpiresAt:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	if err := storage.PutSubscription(ctx, sub); err != nil {
		t.Fatalf("PutSubscription failed: %v", err)
	}

	got, err := storage.GetSubscription(ctx, "chan-1", "res-1")
	if err != nil {
		t.Fatalf("GetSubscription failed: %v", err)
	}
	if got.Provider != "google" {
		t.Errorf("Expected provider google, got %q", got.Provider)
	}

	if _, err := storage.GetSubscription(ctx, "chan-1", "res-2"); err != agenda.ErrSubscriptionNotFound {
		t.Errorf("Expected ErrSubscriptionNotFound, got %v", err)
	}

	sub2 := &agenda.Subscription{
		ChannelID:  "chan-2",
		ResourceID: "res-2",
		Provider:   "google",
		AccountID:  uuid.New(),
		ExpiresAt:  time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	if err := storage.PutSubscription(ctx, sub2); err != nil {
		t.Fatalf("PutSubscription failed: %v", err)
	}

	all, err := storage.ListSubscriptions(ctx)
	if err != nil {
		t.Fatalf("ListSubscriptions failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 subscriptions, got %d", len(all))
	}
}

func TestStorage_ListSubscriptionsExpiring_WindowBounds(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	inside := &agenda.Subscription{ChannelID: "a", ResourceID: "ra", ExpiresAt: now.Add(12 * time.Hour)}
	onEdge := &agenda.Subscription{ChannelID: "b", ResourceID: "rb", ExpiresAt: now.Add(24 * time.Hour)}
	past := &agenda.Subscription{ChannelID: "c", ResourceID: "rc", ExpiresAt: now.Add(-time.Hour)}
	far := &agenda.Subscription{ChannelID: "d", ResourceID: "rd", ExpiresAt: now.Add(48 * time.Hour)}
	for _, sub := range []*agenda.Subscription{inside, onEdge, past, far} {
		if err := storage.PutSubscription(ctx, sub); err != nil {
			t.Fatalf("PutSubscription failed: %v", err)
		}
	}

	subs, err := storage.ListSubscriptionsExpiring(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("ListSubscriptionsExpiring failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("Expected 2 subscriptions, got %d", len(subs))
	}
	for _, sub := range subs {
		if sub.ChannelID == "c" || sub.ChannelID == "d" {
			t.Errorf("Subscription %s should not be in the renewal window", sub.ChannelID)
		}
	}
}

func TestStorage_FinanceItems(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	active := &agenda.FinanceItem{ID: uuid.New(), HouseholdID: uuid.New(), Provider: "plaid", Active: true}
	inactive := &agenda.FinanceItem{ID: uuid.New(), HouseholdID: uuid.New(), Provider: "plaid", Active: false}
	storage.PutFinanceItem(active)
	storage.PutFinanceItem(inactive)

	items, err := storage.ListActiveFinanceItems(ctx)
	if err != nil {
		t.Fatalf("ListActiveFinanceItems failed: %v", err)
	}
	if len(items) != 1 || items[0].ID != active.ID {
		t.Fatalf("Expected only the active item, got %d items", len(items))
	}

	if err := storage.SaveFinanceCursor(ctx, active.ID, "cursor-42"); err != nil {
		t.Fatalf("SaveFinanceCursor failed: %v", err)
	}
	got, err := storage.GetFinanceItem(ctx, active.ID)
	if err != nil {
		t.Fatalf("GetFinanceItem failed: %v", err)
	}
	if got.Cursor != "cursor-42" {
		t.Errorf("Expected cursor cursor-42, got %q", got.Cursor)
	}

	if err := storage.DeactivateFinanceItem(ctx, active.ID); err != nil {
		t.Fatalf("DeactivateFinanceItem failed: %v", err)
	}
	items, err = storage.ListActiveFinanceItems(ctx)
	if err != nil {
		t.Fatalf("ListActiveFinanceItems failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected no active items after deactivation, got %d", len(items))
	}

	if err := storage.SaveFinanceCursor(ctx, uuid.New(), "x"); err != agenda.ErrFinanceItemNotFound {
		t.Errorf("Expected ErrFinanceItemNotFound, got %v", err)
	}
}

func TestStorage_Seen(t *testing.T) {
	storage := memory.New()
	ctx := context.Background()

	seen, err := storage.Seen(ctx, "chan|res|100", time.Hour)
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Error("First observation should not be seen")
	}

	seen, err = storage.Seen(ctx, "chan|res|100", time.Hour)
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if !seen {
		t.Error("Second observation within TTL should be seen")
	}

	seen, err = storage.Seen(ctx, "chan|res|101", time.Hour)
	if err != nil {
		t.Fatalf("Seen failed: %v", err)
	}
	if seen {
		t.Error("Different key should not be seen")
	}
}
