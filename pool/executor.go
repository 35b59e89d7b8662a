// File: pool/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches offloaded calls across a fixed set of worker
// goroutines, using lock-free local rings with a global channel fallback.
// Close cancels whatever is still queued so waiters are never stranded.

package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/internal/concurrency"
)

const localQueueSize = 1024

// Executor manages a bounded pool of worker goroutines.
type Executor struct {
	globalQueue chan *Future
	localQueues []*concurrency.Ring[*Future]
	workers     []*worker
	closeCh     chan struct{}
	closed      atomic.Bool
	wg          sync.WaitGroup
	submitSeq   atomic.Uint64
}

// NewExecutor creates an Executor with numWorkers workers. A non-positive
// count defaults to runtime.NumCPU().
func NewExecutor(numWorkers int) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	e := &Executor{
		globalQueue: make(chan *Future, numWorkers*4),
		closeCh:     make(chan struct{}),
	}
	e.localQueues = make([]*concurrency.Ring[*Future], numWorkers)
	e.workers = make([]*worker, numWorkers)
	for i := 0; i < numWorkers; i++ {
		e.localQueues[i] = concurrency.NewRing[*Future](localQueueSize)
	}
	for i := 0; i < numWorkers; i++ {
		w := &worker{id: i, executor: e, localQueue: e.localQueues[i]}
		e.workers[i] = w
		e.wg.Add(1)
		go w.run(&e.wg)
	}
	return e
}

// Submit schedules fn for execution and returns its Future.
func (e *Executor) Submit(fn api.Fn) (api.Future, error) {
	if e.closed.Load() {
		return nil, api.ErrPoolClosed
	}
	f := newFuture(fn)
	idx := int(e.submitSeq.Add(1) % uint64(len(e.localQueues)))
	enqueued := e.localQueues[idx].Enqueue(f)
	if !enqueued {
		select {
		case e.globalQueue <- f:
		case <-e.closeCh:
			return nil, api.ErrPoolClosed
		}
	}
	// A Close racing with this Submit may already have drained the queues;
	// settle the future as canceled so the waiter is not stranded.
	if e.closed.Load() {
		f.cancel()
	}
	return f, nil
}

// NumWorkers returns the fixed worker count.
func (e *Executor) NumWorkers() int {
	return len(e.workers)
}

// Close shuts the pool down, waits for workers to exit, and cancels any
// work still queued.
func (e *Executor) Close() {
	if !e.closed.CompareAndSwap(false, true) {
		return
	}
	close(e.closeCh)
	e.wg.Wait()

	// Workers are gone; whatever is left in the queues will never run.
	for _, q := range e.localQueues {
		for {
			f, ok := q.Dequeue()
			if !ok {
				break
			}
			f.cancel()
		}
	}
	for {
		select {
		case f := <-e.globalQueue:
			f.cancel()
		default:
			return
		}
	}
}

// worker is a single pool goroutine.
type worker struct {
	id         int
	executor   *Executor
	localQueue *concurrency.Ring[*Future]
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case <-w.executor.closeCh:
			return
		default:
			if f, ok := w.localQueue.Dequeue(); ok {
				f.run()
				continue
			}
			select {
			case f := <-w.executor.globalQueue:
				f.run()
			case <-w.executor.closeCh:
				return
			default:
				// backoff to reduce CPU spinning
				time.Sleep(time.Millisecond)
			}
		}
	}
}
