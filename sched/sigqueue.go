// File: sched/sigqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Process signal queue. OS delivery lands on a dedicated forwarding
// goroutine which records into a bounded lock-free ring; recording never
// blocks and never allocates, and anything beyond the ring's capacity is
// dropped silently. Interpretation of buffered signals happens exclusively
// inside the scheduling loop.

package sched

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-sched/internal/concurrency"
)

// sigQueueCap bounds the number of buffered, not-yet-drained signals.
const sigQueueCap = 5

// SigQueue buffers raw OS signals for synchronous draining by the
// scheduler.
type SigQueue struct {
	ring    *concurrency.Ring[os.Signal]
	ch      chan os.Signal
	once    sync.Once
	dropped atomic.Int64
}

func newSigQueue() *SigQueue {
	return &SigQueue{
		ring: concurrency.NewRing[os.Signal](sigQueueCap),
		ch:   make(chan os.Signal, sigQueueCap),
	}
}

// Record buffers sig, dropping it when the queue is full. Safe to call
// from any goroutine.
func (q *SigQueue) Record(sig os.Signal) {
	if !q.ring.Enqueue(sig) {
		q.dropped.Add(1)
	}
}

// drainOne pops the oldest buffered signal. Called only from the
// scheduling loop.
func (q *SigQueue) drainOne() (os.Signal, bool) {
	return q.ring.Dequeue()
}

// Enable registers OS-level interest in sig, directing delivery into
// Record.
func (q *SigQueue) Enable(sig os.Signal) {
	q.once.Do(func() { go q.forward() })
	signal.Notify(q.ch, sig)
}

// Disable restores default OS handling for sig.
func (q *SigQueue) Disable(sig os.Signal) {
	signal.Reset(sig)
}

// Dropped returns the number of signals discarded due to a full queue.
func (q *SigQueue) Dropped() int64 {
	return q.dropped.Load()
}

// Len returns the number of buffered, undrained signals.
func (q *SigQueue) Len() int {
	return q.ring.Len()
}

func (q *SigQueue) forward() {
	for sig := range q.ch {
		q.Record(sig)
	}
}
