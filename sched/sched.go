// File: sched/sched.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package-level entry points over a single process-wide kernel. The
// default kernel is constructed lazily on first use; embedders that need
// custom wiring construct their own Kernel and ignore these.

package sched

import (
	"os"
	"sync"

	"github.com/momentics/hioload-sched/api"
)

var (
	defaultKernel *Kernel
	defaultOnce   sync.Once
)

// Default returns the process-wide kernel, constructing it on first use.
func Default() *Kernel {
	defaultOnce.Do(func() {
		defaultKernel = NewKernel()
	})
	return defaultKernel
}

// Go starts fn as an independent task on the default kernel.
func Go(fn func(*Proc)) *Proc {
	return Default().Spawn(fn)
}

// Run drives the default kernel until no work remains.
func Run() {
	Default().Run()
}

// Yield gives up the CPU on the default kernel.
func Yield() {
	Default().Yield()
}

// Syscall offloads fn to the default kernel's worker pool, parking the
// calling task until the result is available.
func Syscall(fn api.Fn) (any, error) {
	return Default().EnterSyscall(fn)
}

// SignalEnable routes sig into the default kernel's signal queue.
func SignalEnable(sig os.Signal) {
	Default().SignalEnable(sig)
}

// SignalDisable stops routing sig on the default kernel.
func SignalDisable(sig os.Signal) {
	Default().SignalDisable(sig)
}
