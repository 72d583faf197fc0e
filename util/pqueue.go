package util

import "container/heap"

// PriorityQueue is a small binary heap over an arbitrary element type,
// ordered by a caller-supplied Less. It backs the term-stream merger
// (spec §4.6): the least (field, text) cursor is always at Top.
type PriorityQueue[T any] struct {
	h *pqHeap[T]
}

func NewPriorityQueue[T any](less func(a, b T) bool) *PriorityQueue[T] {
	h := &pqHeap[T]{less: less}
	heap.Init(h)
	return &PriorityQueue[T]{h: h}
}

func (q *PriorityQueue[T]) Len() int { return q.h.Len() }

func (q *PriorityQueue[T]) Push(v T) { heap.Push(q.h, v) }

// Pop removes and returns the least element.
func (q *PriorityQueue[T]) Pop() T {
	return heap.Pop(q.h).(T)
}

// Top returns the least element without removing it.
func (q *PriorityQueue[T]) Top() T {
	return q.h.items[0]
}

func (q *PriorityQueue[T]) Empty() bool { return q.h.Len() == 0 }

type pqHeap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (h *pqHeap[T]) Len() int            { return len(h.items) }
func (h *pqHeap[T]) Less(i, j int) bool  { return h.less(h.items[i], h.items[j]) }
func (h *pqHeap[T]) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *pqHeap[T]) Push(x interface{})  { h.items = append(h.items, x.(T)) }
func (h *pqHeap[T]) Pop() interface{} {
	old := h.items
	n := len(old)
	v := old[n-1]
	h.items = old[:n-1]
	return v
}
