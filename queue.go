package sampler

import "sync"

// Queue is a fixed-capacity FIFO with non-blocking push and pop. It is backed by a
// buffered channel, so Len never exceeds Cap and elements keep their order unless
// evicted by PushDropOldest.
type Queue[T any] struct {
	ch     chan T
	pushMu sync.Mutex // serializes PushDropOldest
}

// NewQueue creates a queue holding at most capacity elements. Capacities below 1 are
// raised to 1.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{
		ch: make(chan T, max(1, capacity)),
	}
}

// TryPush enqueues v without blocking. It returns ErrQueueFull and leaves the queue
// untouched when no slot is free.
func (q *Queue[T]) TryPush(v T) error {
	select {
	case q.ch <- v:
		return nil
	default:
		return ErrQueueFull
	}
}

// PushDropOldest enqueues v without blocking. When the queue is full the single oldest
// element is evicted first and returned with dropped set.
//
// Must not be mixed with TryPush on the same queue: the eviction relies on
// PushDropOldest being the only writer.
func (q *Queue[T]) PushDropOldest(v T) (evicted T, dropped bool) {
	q.pushMu.Lock()
	defer q.pushMu.Unlock()

	select {
	case q.ch <- v:
		return evicted, false
	default:
	}

	select {
	case evicted = <-q.ch:
		dropped = true
	default:
		// A reader emptied a slot in the meantime.
	}

	// Readers only ever free slots, so this cannot block.
	q.ch <- v
	return evicted, dropped
}

// TryPop dequeues the oldest element, reporting false when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// PopBatch dequeues up to n elements, stopping early when the queue runs empty.
func (q *Queue[T]) PopBatch(n int) []T {
	var batch []T
	for len(batch) < n {
		v, ok := q.TryPop()
		if !ok {
			break
		}
		batch = append(batch, v)
	}
	return batch
}

// C exposes the receive side for use in select statements.
func (q *Queue[T]) C() <-chan T {
	return q.ch
}

func (q *Queue[T]) Len() int {
	return len(q.ch)
}

func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
