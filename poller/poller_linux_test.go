//go:build linux

package poller

import (
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-sched/api"
)

func mkpipe(t *testing.T) (r, w int) {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}
	t.Cleanup(func() {
		unix.Close(fds[0])
		unix.Close(fds[1])
	})
	return fds[0], fds[1]
}

func TestPoller_ReadRoundTrip(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	r, w := mkpipe(t)
	if err := p.AddFD(r, api.ModeRead, true); err != nil {
		t.Fatalf("AddFD: %v", err)
	}

	if _, err := unix.Write(w, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	var lock sync.Mutex
	ev, err := p.Wait(&lock, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if ev.FD != r || ev.Mode != api.ModeRead {
		t.Fatalf("event = %+v, want fd %d mode r", ev, r)
	}
}

func TestPoller_DelFDStopsEvents(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	r, w := mkpipe(t)
	if err := p.AddFD(r, api.ModeRead, true); err != nil {
		t.Fatalf("AddFD: %v", err)
	}
	if err := p.DelFD(r, api.ModeRead); err != nil {
		t.Fatalf("DelFD: %v", err)
	}

	if _, err := unix.Write(w, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	var lock sync.Mutex
	if _, err := p.Wait(&lock, 50*time.Millisecond); !errors.Is(err, api.ErrWaitTimeout) {
		t.Fatalf("Wait after DelFD err = %v, want %v", err, api.ErrWaitTimeout)
	}
}

func TestPoller_WriteReadiness(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	_, w := mkpipe(t)
	// An empty pipe is immediately writable.
	if err := p.AddFD(w, api.ModeWrite, true); err != nil {
		t.Fatalf("AddFD: %v", err)
	}

	var lock sync.Mutex
	ev, err := p.Wait(&lock, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if ev.FD != w || ev.Mode != api.ModeWrite {
		t.Fatalf("event = %+v, want fd %d mode w", ev, w)
	}
}

func TestPoller_OneShot(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	r, w := mkpipe(t)
	if err := p.AddFD(r, api.ModeRead, false); err != nil {
		t.Fatalf("AddFD one-shot: %v", err)
	}

	if _, err := unix.Write(w, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	var lock sync.Mutex
	ev, err := p.Wait(&lock, time.Second)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if ev.FD != r {
		t.Fatalf("event fd = %d, want %d", ev.FD, r)
	}

	// The registration auto-disarmed; more data must not produce events.
	if _, err := unix.Write(w, []byte("y")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := p.Wait(&lock, 50*time.Millisecond); !errors.Is(err, api.ErrWaitTimeout) {
		t.Fatalf("Wait after one-shot err = %v, want %v", err, api.ErrWaitTimeout)
	}
}

func TestPoller_WaitTimeout(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	var lock sync.Mutex
	start := time.Now()
	if _, err := p.Wait(&lock, 30*time.Millisecond); !errors.Is(err, api.ErrWaitTimeout) {
		t.Fatalf("Wait err = %v, want %v", err, api.ErrWaitTimeout)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Wait blocked far past its timeout")
	}
}

func TestPoller_ConcurrentRegisterWhileWaiting(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	r, w := mkpipe(t)

	// The waiter re-polls with short timeouts; the lock is released
	// between OS calls, which is when concurrent registration slips in.
	var lock sync.Mutex
	got := make(chan api.Event, 1)
	go func() {
		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			ev, err := p.Wait(&lock, 50*time.Millisecond)
			if err == nil {
				got <- ev
				return
			}
			if !errors.Is(err, api.ErrWaitTimeout) {
				return
			}
		}
	}()

	time.Sleep(10 * time.Millisecond)
	lock.Lock()
	err = p.AddFD(r, api.ModeRead, true)
	lock.Unlock()
	if err != nil {
		t.Fatalf("AddFD: %v", err)
	}
	if _, err := unix.Write(w, []byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case ev := <-got:
		if ev.FD != r || ev.Mode != api.ModeRead {
			t.Fatalf("event = %+v, want fd %d mode r", ev, r)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no event observed after concurrent registration")
	}
}

func TestPoller_ClosedOperations(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := p.AddFD(0, api.ModeRead, true); !errors.Is(err, api.ErrPollerClosed) {
		t.Fatalf("AddFD on closed poller err = %v", err)
	}
	var lock sync.Mutex
	if _, err := p.Wait(&lock, 0); !errors.Is(err, api.ErrPollerClosed) {
		t.Fatalf("Wait on closed poller err = %v", err)
	}
}
