//go:build linux

// File: poller/epoll_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll backend. Interest is tracked per descriptor as a mode mask so
// read and write interest can be added and removed independently over the
// single epoll entry a descriptor gets.

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

type epollPoller struct {
	epfd   int
	events []unix.EpollEvent

	mu     sync.Mutex // guards masks and buf
	masks  map[int]uint32
	buf    *queue.Queue // of api.Event
	closed atomic.Bool
}

// New returns an epoll-backed poller with the default event batch size.
func New() (api.Poller, error) {
	return NewSize(defaultBatch)
}

// NewSize returns an epoll-backed poller drawing up to batch events per OS
// call.
func NewSize(batch int) (api.Poller, error) {
	if batch <= 0 {
		batch = defaultBatch
	}
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	return &epollPoller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, batch),
		masks:  make(map[int]uint32),
		buf:    queue.New(),
	}, nil
}

func modeBit(mode api.IOMode) uint32 {
	if mode == api.ModeWrite {
		return unix.EPOLLOUT
	}
	return unix.EPOLLIN
}

// AddFD registers interest in fd for mode. With repeat false the
// registration is one-shot and the kernel disarms it after the first event.
func (p *epollPoller) AddFD(fd int, mode api.IOMode, repeat bool) error {
	if p.closed.Load() {
		return api.ErrPollerClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	old := p.masks[fd]
	next := old | modeBit(mode)

	ev := unix.EpollEvent{Events: next, Fd: int32(fd)}
	if !repeat {
		ev.Events |= unix.EPOLLONESHOT
	}

	op := unix.EPOLL_CTL_ADD
	if old != 0 {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(p.epfd, op, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl fd %d: %w", fd, err)
	}
	p.masks[fd] = next
	return nil
}

// DelFD removes interest in fd for mode, deleting the epoll entry once no
// modes remain.
func (p *epollPoller) DelFD(fd int, mode api.IOMode) error {
	if p.closed.Load() {
		return api.ErrPollerClosed
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	old, ok := p.masks[fd]
	if !ok {
		return nil
	}
	next := old &^ modeBit(mode)

	if next == 0 {
		if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
			return fmt.Errorf("epoll ctl del fd %d: %w", fd, err)
		}
		delete(p.masks, fd)
		return nil
	}

	ev := unix.EpollEvent{Events: next, Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl mod fd %d: %w", fd, err)
	}
	p.masks[fd] = next
	return nil
}

// Wait pops one buffered event, refilling the buffer through a blocking
// epoll_wait when it is empty. lock is held only around the OS call so
// concurrent AddFD/DelFD stay safe while a goroutine blocks here.
func (p *epollPoller) Wait(lock sync.Locker, timeout time.Duration) (api.Event, error) {
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

		ms := -1
		if timeout >= 0 {
			ms = int(timeout / time.Millisecond)
		}

		lock.Lock()
		n, err := unix.EpollWait(p.epfd, p.events, ms)
		lock.Unlock()

		if err != nil {
			if err == unix.EINTR {
				continue // interrupted by signal, retry transparently
			}
			return api.Event{}, fmt.Errorf("epoll wait: %w", err)
		}
		if n == 0 {
			if timeout >= 0 {
				return api.Event{}, api.ErrWaitTimeout
			}
			continue
		}

		p.mu.Lock()
		for i := 0; i < n; i++ {
			ev := p.events[i]
			fd := int(ev.Fd)
			if ev.Events&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0 {
				p.buf.Add(api.Event{FD: fd, Mode: api.ModeRead})
			}
			if ev.Events&unix.EPOLLOUT != 0 {
				p.buf.Add(api.Event{FD: fd, Mode: api.ModeWrite})
			}
		}
		p.mu.Unlock()
	}
}

// Close releases the epoll descriptor. Subsequent calls are undefined.
func (p *epollPoller) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return api.ErrPollerClosed
	}
	return unix.Close(p.epfd)
}
