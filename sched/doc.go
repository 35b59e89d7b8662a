// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package sched implements the cooperative scheduler kernel: a run queue of
// lightweight tasks multiplexed onto one logical scheduling thread, a
// sleeping table bridging offloaded blocking calls back from the worker
// pool, a bounded process signal queue drained synchronously by the
// scheduling loop, and a deferred re-entry stack supporting nested Run
// calls.
//
// Only one task executes at any instant. A task suspends exclusively at
// explicit points: Yield, Park, or an offloaded Syscall. True OS-level
// parallelism exists solely inside the worker pool executing offloaded
// calls, and those workers hand tasks back through a single mutex-guarded
// completion path.
package sched
