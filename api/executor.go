// Package api
// Author: momentics <momentics@gmail.com>
//
// Executor contract for bounded background execution of blocking calls.

package api

// Fn is a unit of blocking work submitted to an Executor.
type Fn func() (any, error)

// Future tracks one in-flight unit of work submitted to an Executor.
type Future interface {
	// Done is closed once the work has finished or been canceled.
	Done() <-chan struct{}

	// Canceled reports whether the work was dropped before running.
	Canceled() bool

	// Result returns the work's value and error. Valid only after Done.
	Result() (any, error)

	// PanicValue returns the value recovered from a panicking unit of
	// work, or nil. Valid only after Done.
	PanicValue() any

	// OnDone registers cb to run when the work finishes or is canceled.
	// If the future is already settled, cb runs synchronously.
	OnDone(cb func(Future))
}

// Executor abstracts a bounded worker pool. Workers are created once at
// construction and never resized.
type Executor interface {
	// Submit schedules fn for execution and returns its future.
	Submit(fn Fn) (Future, error)

	// NumWorkers returns the number of worker goroutines.
	NumWorkers() int

	// Close shuts the pool down. Work still queued is canceled.
	Close()
}
