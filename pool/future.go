// File: pool/future.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Future implementation backing Executor submissions.

package pool

import (
	"sync"

	"github.com/momentics/hioload-sched/api"
)

const (
	statePending = iota
	stateRunning
	stateDone
	stateCanceled
)

// Future is the pool's api.Future implementation.
type Future struct {
	fn api.Fn

	mu        sync.Mutex
	state     int
	val       any
	err       error
	panicVal  any
	done      chan struct{}
	callbacks []func(api.Future)
}

func newFuture(fn api.Fn) *Future {
	return &Future{fn: fn, done: make(chan struct{})}
}

// Done returns a channel closed once the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Canceled reports whether the work was dropped before running.
func (f *Future) Canceled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state == stateCanceled
}

// Result returns the call's value and error. Valid only after Done.
func (f *Future) Result() (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, f.err
}

// PanicValue returns the recovered panic value, or nil.
func (f *Future) PanicValue() any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.panicVal
}

// OnDone registers cb to run when the future settles. A settled future runs
// cb synchronously on the caller's goroutine.
func (f *Future) OnDone(cb func(api.Future)) {
	f.mu.Lock()
	if f.state == stateDone || f.state == stateCanceled {
		f.mu.Unlock()
		cb(f)
		return
	}
	f.callbacks = append(f.callbacks, cb)
	f.mu.Unlock()
}

// run executes the work on a worker goroutine, capturing panics.
func (f *Future) run() {
	f.mu.Lock()
	if f.state != statePending {
		f.mu.Unlock()
		return
	}
	f.state = stateRunning
	f.mu.Unlock()

	var val any
	var err error
	var panicVal any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicVal = r
			}
		}()
		val, err = f.fn()
	}()

	f.settle(stateDone, val, err, panicVal)
}

// cancel drops pending work. Running or settled futures are unaffected.
func (f *Future) cancel() {
	f.mu.Lock()
	if f.state != statePending {
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	f.settle(stateCanceled, nil, api.ErrSyscallCanceled, nil)
}

func (f *Future) settle(state int, val any, err error, panicVal any) {
	f.mu.Lock()
	if f.state == stateDone || f.state == stateCanceled {
		f.mu.Unlock()
		return
	}
	f.state = state
	f.val = val
	f.err = err
	f.panicVal = panicVal
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range cbs {
		cb(f)
	}
}
