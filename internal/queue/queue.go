// Package queue provides the FIFO used for every worker pool and job backlog.
package queue

import "errors"

// ErrEmpty is returned by Pop and Peek on an empty queue.
var ErrEmpty = errors.New("queue: pop on empty queue")

// compactAt is the minimum number of consumed slots before the backing
// slice is compacted while the queue is still non-empty.
const compactAt = 64

// Queue is a first-in first-out queue. The zero value is ready to use.
// It is not safe for concurrent use; the simulation owns it on one goroutine.
type Queue[T any] struct {
	items []T
	head  int
}

// New returns an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends v at the tail.
func (q *Queue[T]) Push(v T) {
	q.items = append(q.items, v)
}

// Pop removes and returns the oldest item.
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	if q.IsEmpty() {
		return zero, ErrEmpty
	}

	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	switch {
	case q.head == len(q.items):
		// Drained: start over from index zero.
		q.reset()
	case q.head >= compactAt && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return v, nil
}

// Peek returns the oldest item without removing it.
func (q *Queue[T]) Peek() (T, error) {
	if q.IsEmpty() {
		var zero T
		return zero, ErrEmpty
	}
	return q.items[q.head], nil
}

// Len returns the number of pending items.
func (q *Queue[T]) Len() int {
	return len(q.items) - q.head
}

// IsEmpty reports whether the queue has no pending items.
func (q *Queue[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Items returns a copy of the pending items, oldest first.
func (q *Queue[T]) Items() []T {
	out := make([]T, q.Len())
	copy(out, q.items[q.head:])
	return out
}

func (q *Queue[T]) reset() {
	q.items = q.items[:0]
	q.head = 0
}
