//go:build darwin || freebsd || netbsd || openbsd || dragonfly

// File: poller/kqueue_bsd.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// kqueue backend for Darwin and the BSDs. Read and write interest map to
// separate kevent filters, so per-mode add/remove needs no mask tracking.

package poller

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eapache/queue"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sched/api"
)

const defaultBatch = 128

type kqueuePoller struct {
	kq     int
	events []unix.Kevent_t

	mu     sync.Mutex // guards buf
	buf    *queue.Queue
	closed atomic.Bool
}

// New returns a kqueue-backed poller with the default event batch size.
func New() (api.Poller, error) {
	return NewSize(defaultBatch)
}

// NewSize returns a kqueue-backed poller drawing up to batch events per OS
// call.
func NewSize(batch int) (api.Poller, error) {
	if batch <= 0 {
		batch = defaultBatch
	}
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("kqueue create: %w", err)
	}
	unix.CloseOnExec(kq)
	return &kqueuePoller{
		kq:     kq,
		events: make([]unix.Kevent_t, batch),
		buf:    queue.New(),
	}, nil
}

func modeFilter(mode api.IOMode) int {
	if mode == api.ModeWrite {
		return unix.EVFILT_WRITE
	}
	return unix.EVFILT_READ
}

// AddFD registers interest in fd for mode; repeat false requests a one-shot
// notification via EV_ONESHOT.
func (p *kqueuePoller) AddFD(fd int, mode api.IOMode, repeat bool) error {
	if p.closed.Load() {
		return api.ErrPollerClosed
	}

	flags := unix.EV_ADD | unix.EV_ENABLE
	if !repeat {
		flags |= unix.EV_ONESHOT
	}
	var kev unix.Kevent_t
	unix.SetKevent(&kev, fd, modeFilter(mode), flags)

	if _, err := unix.Kevent(p.kq, []unix.Kevent_t{kev}, nil, nil); err != nil {
		return fmt.Errorf("kevent add fd %d: %w", fd, err)
	}
	return nil
}

// DelFD removes interest in fd for mode.
func (p *kqueuePoller) DelFD(fd int, mode api.IOMode) error {
	if p.closed.Load() {
		return api.ErrPollerClosed
	}

	var kev unix.Kevent_t
	unix.SetKevent(&kev, fd, modeFilter(mode), unix.EV_DELETE)

	if _, err := unix.Kevent(p.kq, []unix.Kevent_t{kev}, nil, nil); err != nil {
		return fmt.Errorf("kevent delete fd %d: %w", fd, err)
	}
	return nil
}

// Wait pops one buffered event, refilling through a blocking kevent call
// when the buffer is empty. lock is held only around the OS call.
func (p *kqueuePoller) Wait(lock sync.Locker, timeout time.Duration) (api.Event, error) {
	for {
		if p.closed.Load() {
			return api.Event{}, api.ErrPollerClosed
		}

		p.mu.Lock()
		if p.buf.Length() > 0 {
			ev := p.buf.Remove().(api.Event)
			p.mu.Unlock()
			return ev, nil
		}
		p.mu.Unlock()

		var ts *unix.Timespec
		if timeout >= 0 {
			t := unix.NsecToTimespec(timeout.Nanoseconds())
			ts = &t
		}

		lock.Lock()
		n, err := unix.Kevent(p.kq, nil, p.events, ts)
		lock.Unlock()

		if err != nil {
			if err == unix.EINTR {
				continue // interrupted by signal, retry transparently
			}
			return api.Event{}, fmt.Errorf("kevent wait: %w", err)
		}
		if n == 0 {
			if timeout >= 0 {
				return api.Event{}, api.ErrWaitTimeout
			}
			continue
		}

		p.mu.Lock()
		for i := 0; i < n; i++ {
			kev := p.events[i]
			mode := api.ModeRead
			if int(kev.Filter) == unix.EVFILT_WRITE {
				mode = api.ModeWrite
			}
			p.buf.Add(api.Event{FD: int(kev.Ident), Mode: mode})
		}
		p.mu.Unlock()
	}
}

// Close releases the kqueue descriptor. Subsequent calls are undefined.
func (p *kqueuePoller) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return api.ErrPollerClosed
	}
	return unix.Close(p.kq)
}
