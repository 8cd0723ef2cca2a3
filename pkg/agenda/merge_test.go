package agenda

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func item(typ ItemType, id uuid.UUID, start time.Time) Item {
	return Item{
		ID:       instanceID(id, start),
		Type:     typ,
		Start:    start,
		End:      start.Add(time.Hour),
		SourceID: id,
	}
}

func assertOrdered(t *testing.T, items []Item) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		if less(items[i], items[i-1]) {
			t.Errorf("Items out of order at %d: %v before %v", i, items[i-1].ID, items[i].ID)
		}
	}
}

func TestMergeStreams_Interleaves(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	t0 := dt(2026, 5, 1, 8, 0)

	s1 := []Item{item(TypeEvent, a, t0), item(TypeEvent, a, t0.Add(4*time.Hour))}
	s2 := []Item{item(TypeBill, b, t0.Add(2*time.Hour)), item(TypeBill, b, t0.Add(6*time.Hour))}

	merged := mergeStreams([][]Item{s1, s2})
	if len(merged) != 4 {
		t.Fatalf("Expected 4 items, got %d", len(merged))
	}
	assertOrdered(t, merged)
	if merged[0].Type != TypeEvent || merged[1].Type != TypeBill {
		t.Errorf("Unexpected interleaving: %v %v", merged[0].Type, merged[1].Type)
	}
}

func TestMergeStreams_TypePriorityBreaksTies(t *testing.T) {
	t0 := dt(2026, 5, 1, 9, 0)
	birthday := item(TypeBirthday, uuid.New(), t0)
	task := item(TypeTask, uuid.New(), t0)
	bill := item(TypeBill, uuid.New(), t0)
	event := item(TypeEvent, uuid.New(), t0)

	merged := mergeStreams([][]Item{{birthday}, {task}, {bill}, {event}})
	want := []ItemType{TypeEvent, TypeBill, TypeTask, TypeBirthday}
	for i, typ := range want {
		if merged[i].Type != typ {
			t.Errorf("Position %d: expected %s, got %s", i, typ, merged[i].Type)
		}
	}
}

func TestMergeStreams_SourceIDBreaksRemainingTies(t *testing.T) {
	t0 := dt(2026, 5, 1, 9, 0)
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	// Same timestamp, same type: source id decides, regardless of stream order.
	merged := mergeStreams([][]Item{{item(TypeEvent, b, t0)}, {item(TypeEvent, a, t0)}})
	if merged[0].SourceID != a || merged[1].SourceID != b {
		t.Errorf("Expected source-id ordering, got %v then %v", merged[0].SourceID, merged[1].SourceID)
	}
}

func TestMergeStreams_EmptyInput(t *testing.T) {
	merged := mergeStreams(nil)
	if merged == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(merged) != 0 {
		t.Fatalf("Expected no items, got %d", len(merged))
	}

	merged = mergeStreams([][]Item{nil, {}, nil})
	if len(merged) != 0 {
		t.Fatalf("Expected no items from empty streams, got %d", len(merged))
	}
}

func TestMergeStreams_Deterministic(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	t0 := dt(2026, 5, 1, 0, 0)

	streams := [][]Item{
		{item(TypeEvent, a, t0), item(TypeEvent, a, t0.Add(3*time.Hour))},
		{item(TypeBill, b, t0), item(TypeBill, b, t0.Add(time.Hour))},
		{item(TypeTask, c, t0.Add(time.Hour))},
	}

	first := mergeStreams(streams)
	assertOrdered(t, first)
	for i := 0; i < 10; i++ {
		again := mergeStreams(streams)
		if len(again) != len(first) {
			t.Fatalf("Run %d: length changed", i)
		}
		for j := range first {
			if first[j].ID != again[j].ID {
				t.Fatalf("Run %d: order changed at %d", i, j)
			}
		}
	}
}
