// File: sched/kernel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Kernel owns the run queue, the sleeping table and the deferred re-entry
// stack. The scheduling loop drains at most one buffered signal per
// iteration, selects the next runnable proc, and switches into it with
// symmetric-coroutine semantics: each invocation of the loop returns
// precisely when control has cycled back to its own invoking context.

package sched

import (
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/momentics/hioload-sched/api"
	"github.com/momentics/hioload-sched/config"
	"github.com/momentics/hioload-sched/control"
	"github.com/momentics/hioload-sched/pool"
)

// ExitIOErr is the process exit status used for fatal termination signals,
// mirroring the BSD EX_IOERR convention.
const ExitIOErr = 74

// idleWait bounds a single wait for worker-pool completions. It exists only
// to keep the signal queue responsive, not as a correctness deadline.
const idleWait = 200 * time.Millisecond

// DefaultSignals is the termination-class set installed at kernel
// construction unless overridden with WithSignals.
var DefaultSignals = []os.Signal{syscall.SIGQUIT, syscall.SIGINT, syscall.SIGTERM}

// Kernel is the cooperative scheduler. Construct one per process with
// NewKernel, or use the package-level Default kernel.
type Kernel struct {
	mu       sync.Mutex
	runq     runQueue
	sleeping map[api.Future]*Proc
	runCalls []*Proc
	lastProc *Proc
	current  *Proc
	mainProc *Proc

	wake chan struct{}
	sigq *SigQueue
	exec api.Executor
	reg  *control.MetricsRegistry
	exit func(int)

	idSeq atomic.Uint64

	spawned          atomic.Int64
	completed        atomic.Int64
	syscalls         atomic.Int64
	syscallsCanceled atomic.Int64
}

// Option configures a Kernel at construction.
type Option func(*kernelOptions)

type kernelOptions struct {
	cfg     *config.Config
	exec    api.Executor
	reg     *control.MetricsRegistry
	signals []os.Signal
	sigSet  bool
}

// WithConfig supplies a pre-loaded configuration instead of config.Load().
func WithConfig(cfg *config.Config) Option {
	return func(o *kernelOptions) { o.cfg = cfg }
}

// WithExecutor substitutes the worker pool implementation.
func WithExecutor(exec api.Executor) Option {
	return func(o *kernelOptions) { o.exec = exec }
}

// WithMetrics attaches a registry the kernel publishes counters into.
func WithMetrics(reg *control.MetricsRegistry) Option {
	return func(o *kernelOptions) { o.reg = reg }
}

// WithSignals overrides the OS signal set routed into the signal queue.
// An empty call installs no handlers at all.
func WithSignals(sigs ...os.Signal) Option {
	return func(o *kernelOptions) {
		o.signals = sigs
		o.sigSet = true
	}
}

// NewKernel constructs a scheduler. Initialization order: configuration,
// worker pool, signal queue, signal handler installation.
func NewKernel(opts ...Option) *Kernel {
	var o kernelOptions
	for _, opt := range opts {
		opt(&o)
	}
	cfg := o.cfg
	if cfg == nil {
		cfg = config.Load()
	}

	k := &Kernel{
		sleeping: make(map[api.Future]*Proc),
		wake:     make(chan struct{}, 1),
		exec:     o.exec,
		reg:      o.reg,
		exit:     os.Exit,
	}
	if k.exec == nil {
		k.exec = pool.NewExecutor(cfg.MaxThreads)
	}
	k.sigq = newSigQueue()
	k.mainProc = newMainProc(k)
	k.current = k.mainProc

	sigs := DefaultSignals
	if o.sigSet {
		sigs = o.signals
	}
	for _, sig := range sigs {
		k.sigq.Enable(sig)
	}
	return k
}

// Spawn creates a task running fn and appends it to the run queue tail.
// The task does not execute until the scheduling loop dispatches it.
func (k *Kernel) Spawn(fn func(*Proc)) *Proc {
	p := newProc(k, fn)
	p.start()
	k.mu.Lock()
	k.runq.pushBack(p)
	k.mu.Unlock()
	k.spawned.Add(1)
	k.publish()
	return p
}

// Remove deletes p from the run queue; no error if absent.
func (k *Kernel) Remove(p *Proc) {
	k.mu.Lock()
	k.runq.remove(p)
	k.mu.Unlock()
}

// Park suspends the calling task: it is marked sleeping, withdrawn from the
// run queue, and the scheduling loop runs until something switches back.
// Must be called only from within the task's own execution context.
func (k *Kernel) Park() {
	g := k.Current()
	g.state.setSleeping(true)
	k.mu.Lock()
	k.runq.remove(g)
	k.mu.Unlock()
	k.schedule()
}

// Ready transitions a sleeping task back to runnable at the run queue tail.
// Readying a task that is not sleeping is a protocol violation and returns
// ErrBadProcState; this guards against double wakes.
func (k *Kernel) Ready(p *Proc) error {
	if !p.Sleeping() {
		return api.ErrBadProcState
	}
	p.state.setSleeping(false)
	k.mu.Lock()
	k.runq.pushBack(p)
	k.mu.Unlock()
	k.wakeUp()
	return nil
}

// Run drives the scheduler from the calling context, pushing it onto the
// deferred re-entry stack first. Usable both as the top-level process
// driver and recursively from within a running task.
func (k *Kernel) Run() {
	g := k.Current()
	k.mu.Lock()
	k.runCalls = append(k.runCalls, g)
	k.mu.Unlock()
	k.schedule()
}

// Yield gives up the CPU, letting every other runnable task take a turn
// before the caller runs again.
func (k *Kernel) Yield() {
	k.schedule()
}

// Current returns the task holding the logical CPU.
func (k *Kernel) Current() *Proc {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.current
}

func (k *Kernel) setCurrent(p *Proc) {
	k.mu.Lock()
	k.current = p
	k.mu.Unlock()
}

// SignalEnable routes sig into the kernel's signal queue.
func (k *Kernel) SignalEnable(sig os.Signal) { k.sigq.Enable(sig) }

// SignalDisable stops routing sig.
func (k *Kernel) SignalDisable(sig os.Signal) { k.sigq.Disable(sig) }

// Shutdown releases the worker pool. Only useful in tests and embedders;
// the reference lifecycle is process-long.
func (k *Kernel) Shutdown() {
	k.exec.Close()
}

// schedule is the scheduling loop. One iteration: drain at most one
// buffered signal (termination class aborts the process), select the next
// candidate per the run-queue discipline, prune dead procs at the head, and
// switch. Returns once control has cycled back to the invoking context.
func (k *Kernel) schedule() {
	gcur := k.Current()

	for {
		if sig, ok := k.sigq.drainOne(); ok && isTermSignal(sig) {
			// Fail-fast abort: no further tasks are serviced and no
			// cleanup is attempted.
			k.exit(ExitIOErr)
			return
		}

		k.mu.Lock()
		var gnext *Proc
		fromRunq := false
		switch {
		case k.runq.len() > 0:
			if k.runq.head() == gcur {
				// The caller re-entered the loop without making
				// progress; rotate so it does not re-select itself.
				k.runq.rotate()
			}
			gnext = k.runq.head()
			fromRunq = true

		case len(k.sleeping) > 0:
			// Nothing runnable, but offloaded work may come back.
			k.mu.Unlock()
			select {
			case <-k.wake:
			case <-time.After(idleWait):
				// Re-poll the signal queue promptly.
			}
			continue

		case len(k.runCalls) > 0:
			gnext = k.runCalls[len(k.runCalls)-1]
			k.runCalls = k.runCalls[:len(k.runCalls)-1]

		default:
			// No work remains.
			k.mu.Unlock()
			return
		}

		if !gnext.Alive() {
			if fromRunq {
				k.runq.popFront()
			}
			k.mu.Unlock()
			continue
		}

		k.lastProc = gnext
		k.mu.Unlock()

		if gnext != gcur {
			gnext.notify()
			if !gcur.Alive() {
				// Dead caller: hand off and let its goroutine exit.
				return
			}
			gcur.wait()
		}

		k.mu.Lock()
		last := k.lastProc
		k.mu.Unlock()
		if last == gcur {
			return
		}
	}
}

// procExited is called by a proc's goroutine after its body returns.
func (k *Kernel) procExited() {
	k.completed.Add(1)
	k.publish()
}

func (k *Kernel) wakeUp() {
	select {
	case k.wake <- struct{}{}:
	default:
	}
}

// publish pushes scheduler counters into the attached metrics registry.
func (k *Kernel) publish() {
	if k.reg == nil {
		return
	}
	k.reg.Set("tasks_spawned", k.spawned.Load())
	k.reg.Set("tasks_completed", k.completed.Load())
	k.reg.Set("syscalls_entered", k.syscalls.Load())
	k.reg.Set("syscalls_canceled", k.syscallsCanceled.Load())
	k.reg.Set("signals_dropped", k.sigq.Dropped())
	k.reg.Set("pool_workers", int64(k.exec.NumWorkers()))
}

// Stats returns a snapshot of scheduler counters.
func (k *Kernel) Stats() map[string]int64 {
	return map[string]int64{
		"tasks_spawned":     k.spawned.Load(),
		"tasks_completed":   k.completed.Load(),
		"syscalls_entered":  k.syscalls.Load(),
		"syscalls_canceled": k.syscallsCanceled.Load(),
		"signals_dropped":   k.sigq.Dropped(),
		"pool_workers":      int64(k.exec.NumWorkers()),
	}
}

func isTermSignal(sig os.Signal) bool {
	switch sig {
	case syscall.SIGQUIT, syscall.SIGINT, syscall.SIGTERM:
		return true
	}
	return false
}
