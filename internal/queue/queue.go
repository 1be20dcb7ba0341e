package queue

import "sync"

// Blocking is an unbounded FIFO queue safe for concurrent use.
// The zero value is not usable; create one with New.
type Blocking[T any] struct {
	// mu guards items and is the locker behind notEmpty.
	mu sync.Mutex

	// notEmpty is signalled once per Push.
	notEmpty *sync.Cond

	// items holds queued values; the head is items[0].
	items []T
}

// New creates an empty Blocking queue.
func New[T any]() *Blocking[T] {
	q := &Blocking[T]{}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Push appends item to the tail of the queue.
// It never blocks on capacity and wakes one waiting Pop, if any.
func (q *Blocking[T]) Push(item T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, item)
	q.notEmpty.Signal()
}

// Pop removes and returns the head of the queue.
// If the queue is empty, Pop suspends the calling goroutine until an
// item is pushed.
func (q *Blocking[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		q.notEmpty.Wait()
	}

	item := q.items[0]
	var zero T
	q.items[0] = zero // drop the reference so the backing array doesn't pin it
	q.items = q.items[1:]
	if len(q.items) == 0 {
		// Reset so the backing array can be reclaimed once drained.
		q.items = nil
	}
	return item
}

// IsEmpty reports whether the queue held no items at the moment of the call.
func (q *Blocking[T]) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of queued items at the moment of the call.
func (q *Blocking[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
