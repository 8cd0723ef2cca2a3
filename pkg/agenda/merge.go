package agenda

import "container/heap"

// stream is one per-entity run of items, already in chronological order
// because expansion emits occurrences chronologically.
type stream struct {
	items []Item
	pos   int
}

func (s *stream) head() Item { return s.items[s.pos] }

// streamHeap orders streams by their head item under the agenda ordering.
type streamHeap []*stream

func (h streamHeap) Len() int            { return len(h) }
func (h streamHeap) Less(i, j int) bool  { return less(h[i].head(), h[j].head()) }
func (h streamHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *streamHeap) Push(x interface{}) { *h = append(*h, x.(*stream)) }
func (h *streamHeap) Pop() interface{} {
	old := *h
	n := len(old)
	s := old[n-1]
	*h = old[:n-1]
	return s
}

// mergeStreams performs a k-way ordered merge over per-entity item runs.
// The output equals the sorted union under (start, type priority, source id),
// so identical inputs always produce identical sequences.
func mergeStreams(streams [][]Item) []Item {
	h := make(streamHeap, 0, len(streams))
	total := 0
	for _, items := range streams {
		if len(items) == 0 {
			continue
		}
		h = append(h, &stream{items: items})
		total += len(items)
	}
	if total == 0 {
		return []Item{}
	}
	heap.Init(&h)

	out := make([]Item, 0, total)
	for h.Len() > 0 {
		s := h[0]
		out = append(out, s.head())
		s.pos++
		if s.pos == len(s.items) {
			heap.Pop(&h)
		} else {
			heap.Fix(&h, 0)
		}
	}
	return out
}
