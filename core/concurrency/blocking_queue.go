// File: core/concurrency/blocking_queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// BlockingQueue is a bounded MPMC hand-off buffer. Push parks the caller while
// the queue is full, Pop parks the caller while it is empty. It is the only
// flow-control point between frame producers and delivery loops.

package concurrency

import (
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
	"golang.org/x/sys/cpu"
)

// BlockingQueue is a bounded FIFO with blocking Push/Pop. Every pushed item is
// handed to exactly one Pop caller.
type BlockingQueue[T any] struct {
	mu       sync.Mutex
	notFull  sync.Cond
	notEmpty sync.Cond
	items    *queue.Queue
	capacity int
	closed   bool
	parked   int // pushers waiting on notFull

	_      cpu.CacheLinePad
	pushed atomic.Uint64
	popped atomic.Uint64
}

// QueueStats is a point-in-time view of queue activity.
type QueueStats struct {
	Len      int
	Cap      int
	Parked   int
	Pushed   uint64
	Popped   uint64
	IsClosed bool
}

// NewBlockingQueue creates a queue holding at most capacity items.
func NewBlockingQueue[T any](capacity int) (*BlockingQueue[T], error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity
	}
	q := &BlockingQueue[T]{
		items:    queue.New(),
		capacity: capacity,
	}
	q.notFull.L = &q.mu
	q.notEmpty.L = &q.mu
	return q, nil
}

// Push appends item, blocking while the queue is at capacity.
// Returns ErrQueueClosed if the queue is (or becomes) closed.
func (q *BlockingQueue[T]) Push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && q.items.Length() >= q.capacity {
		q.parked++
		q.notFull.Wait()
		q.parked--
	}
	if q.closed {
		return ErrQueueClosed
	}
	q.items.Add(item)
	q.pushed.Add(1)
	q.notEmpty.Signal()
	return nil
}

// Pop removes the oldest item, blocking while the queue is empty.
// After Close it keeps returning buffered items and then ErrQueueClosed.
func (q *BlockingQueue[T]) Pop() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for !q.closed && q.items.Length() == 0 {
		q.notEmpty.Wait()
	}
	if q.items.Length() == 0 {
		var zero T
		return zero, ErrQueueClosed
	}
	item := q.items.Remove().(T)
	q.popped.Add(1)
	q.notFull.Signal()
	return item, nil
}

// Close wakes every parked caller. Idempotent.
func (q *BlockingQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	q.notFull.Broadcast()
	q.notEmpty.Broadcast()
}

// Len returns the number of buffered items.
func (q *BlockingQueue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Cap returns the fixed capacity.
func (q *BlockingQueue[T]) Cap() int {
	return q.capacity
}

// BlockedPushers reports how many Push callers are parked on a full queue.
func (q *BlockingQueue[T]) BlockedPushers() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.parked
}

// Stats returns a snapshot of queue counters.
func (q *BlockingQueue[T]) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Len:      q.items.Length(),
		Cap:      q.capacity,
		Parked:   q.parked,
		Pushed:   q.pushed.Load(),
		Popped:   q.popped.Load(),
		IsClosed: q.closed,
	}
}
