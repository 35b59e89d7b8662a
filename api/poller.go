// Package api
// Author: momentics <momentics@gmail.com>
//
// Readiness poller contract over kqueue/epoll-family OS primitives.

package api

import (
	"sync"
	"time"
)

// IOMode selects the readiness direction of interest.
type IOMode byte

const (
	// ModeRead requests readability notifications.
	ModeRead IOMode = 'r'
	// ModeWrite requests writability notifications.
	ModeWrite IOMode = 'w'
)

// Event is one (descriptor, mode) readiness pair reported by a poller.
type Event struct {
	FD   int
	Mode IOMode
}

// Poller is an OS readiness-notification capability. Backend selection is
// platform-driven and fails fast at initialization when the host lacks the
// required primitive.
type Poller interface {
	// AddFD registers interest in fd for the given mode. With repeat set
	// to false the registration is one-shot and deregisters itself after
	// the first event.
	AddFD(fd int, mode IOMode, repeat bool) error

	// DelFD removes interest in fd for the given mode.
	DelFD(fd int, mode IOMode) error

	// Wait returns one buffered event, performing a blocking OS readiness
	// call to refill the buffer when it is empty. The external lock is
	// held only around the OS call so concurrent AddFD/DelFD remain safe
	// while one goroutine blocks. Interrupted OS calls are retried
	// transparently. A non-negative timeout bounds a single OS call;
	// expiry surfaces ErrWaitTimeout.
	Wait(lock sync.Locker, timeout time.Duration) (Event, error)

	// Close releases the underlying OS resource. Subsequent calls on the
	// poller are undefined.
	Close() error
}
