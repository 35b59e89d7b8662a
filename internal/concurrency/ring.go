// File: internal/concurrency/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded MPMC ring with per-slot sequence numbers. Enqueue never blocks
// and never allocates, which makes the ring safe to feed from the signal
// delivery goroutine while the scheduler thread drains it.

package concurrency

import "sync/atomic"

type slot[T any] struct {
	seq atomic.Uint64
	val T
}

// Ring is a fixed-capacity lock-free FIFO. Capacity is exact, not rounded
// to a power of two.
type Ring[T any] struct {
	slots []slot[T]
	size  uint64
	enq   atomic.Uint64
	deq   atomic.Uint64
}

// NewRing allocates a ring holding at most capacity items.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("concurrency: ring capacity must be positive")
	}
	r := &Ring[T]{
		slots: make([]slot[T], capacity),
		size:  uint64(capacity),
	}
	for i := range r.slots {
		r.slots[i].seq.Store(uint64(i))
	}
	return r
}

// Enqueue appends val; returns false if the ring is full.
func (r *Ring[T]) Enqueue(val T) bool {
	pos := r.enq.Load()
	for {
		s := &r.slots[pos%r.size]
		seq := s.seq.Load()
		switch d := int64(seq) - int64(pos); {
		case d == 0:
			if r.enq.CompareAndSwap(pos, pos+1) {
				s.val = val
				s.seq.Store(pos + 1)
				return true
			}
			pos = r.enq.Load()
		case d < 0:
			return false // full
		default:
			pos = r.enq.Load()
		}
	}
}

// Dequeue removes and returns the oldest item; ok is false when empty.
func (r *Ring[T]) Dequeue() (item T, ok bool) {
	pos := r.deq.Load()
	for {
		s := &r.slots[pos%r.size]
		seq := s.seq.Load()
		switch d := int64(seq) - int64(pos+1); {
		case d == 0:
			if r.deq.CompareAndSwap(pos, pos+1) {
				item = s.val
				var zero T
				s.val = zero
				s.seq.Store(pos + r.size)
				return item, true
			}
			pos = r.deq.Load()
		case d < 0:
			return item, false // empty
		default:
			pos = r.deq.Load()
		}
	}
}

// Len returns the approximate number of buffered items.
func (r *Ring[T]) Len() int {
	enq := r.enq.Load()
	deq := r.deq.Load()
	if enq < deq {
		return 0
	}
	return int(enq - deq)
}

// Cap returns the ring's fixed capacity.
func (r *Ring[T]) Cap() int {
	return int(r.size)
}
