// File: sched/syscall.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Syscall offload bridge. A blocking call is handed to the worker pool
// while the calling task parks; the pool completion re-admits the task at
// the run queue head so syscall resumes outrank queued cooperative work.
//
// Ordering is load-bearing: the caller's park bookkeeping (sleeping flag,
// run queue withdrawal) happens before submission, so a completion that
// fires at any later moment simply re-admits the task and the subsequent
// schedule call observes it runnable again. The one-token resume channel
// absorbs a switch that arrives before the caller has blocked.

package sched

import (
	"github.com/momentics/hioload-sched/api"
)

// EnterSyscall runs fn on the worker pool while the calling task sleeps.
// On resume the worker's result is returned; a worker error surfaces as if
// the call had been synchronous, and a worker panic is re-raised in the
// calling task with its original value. Callable only from within a
// running task's context.
func (k *Kernel) EnterSyscall(fn api.Fn) (any, error) {
	g := k.Current()

	g.state.setSleeping(true)
	k.mu.Lock()
	k.runq.remove(g)
	k.mu.Unlock()

	fut, err := k.exec.Submit(fn)
	if err != nil {
		// Nothing was offloaded; restore the caller and fail
		// synchronously.
		g.state.setSleeping(false)
		k.mu.Lock()
		k.runq.pushFront(g)
		k.mu.Unlock()
		return nil, err
	}

	k.mu.Lock()
	k.sleeping[fut] = g
	k.mu.Unlock()
	k.syscalls.Add(1)
	k.publish()

	fut.OnDone(k.exitSyscall)

	k.schedule()

	if pv := fut.PanicValue(); pv != nil {
		panic(pv)
	}
	return fut.Result()
}

// exitSyscall is the completion path. It may run on a worker-pool
// goroutine concurrently with the scheduler, so every structure it touches
// is guarded by the kernel mutex. Canceled work re-admits the task as well
// (terminate-and-reclaim): the waiter observes ErrSyscallCanceled instead
// of being stranded in the sleeping state forever.
func (k *Kernel) exitSyscall(fut api.Future) {
	k.mu.Lock()
	g, ok := k.sleeping[fut]
	if !ok {
		k.mu.Unlock()
		return
	}
	delete(k.sleeping, fut)

	if !g.Alive() {
		k.mu.Unlock()
		return
	}

	g.state.setSleeping(false)
	// Head insertion: syscall completions are dispatched with priority
	// over already-queued cooperative work.
	k.runq.pushFront(g)
	k.mu.Unlock()

	if fut.Canceled() {
		k.syscallsCanceled.Add(1)
		k.publish()
	}
	k.wakeUp()
}
