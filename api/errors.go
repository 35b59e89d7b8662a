// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error values shared across hioload-sched packages.

package api

import "errors"

var (
	// ErrBadProcState indicates a scheduling protocol violation, such as
	// readying a task that is not sleeping. It signals a bug in calling
	// code and is never retried.
	ErrBadProcState = errors.New("sched: bad proc state")

	// ErrPoolClosed indicates the worker pool has been shut down.
	ErrPoolClosed = errors.New("pool: executor is closed")

	// ErrSyscallCanceled indicates an offloaded call was dropped before it
	// ran, typically because the pool was closed with work still queued.
	ErrSyscallCanceled = errors.New("sched: offloaded call canceled")

	// ErrPollerClosed indicates the poller's OS resource has been released.
	ErrPollerClosed = errors.New("poller: closed")

	// ErrWaitTimeout indicates a poller Wait returned without events
	// within the supplied timeout.
	ErrWaitTimeout = errors.New("poller: wait timeout")
)
