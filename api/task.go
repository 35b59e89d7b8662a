// Package api
// Author: momentics <momentics@gmail.com>
//
// Task contract for cooperatively scheduled units of execution.

package api

// Task is a lightweight, cooperatively scheduled unit of execution. At most
// one task runs at any instant; a task suspends only at explicit points
// (park or an offloaded call) and is resumed by the scheduler.
type Task interface {
	// ID returns the task's process-unique identity.
	ID() uint64

	// Alive reports whether the task's body has not yet returned or
	// panicked. A dead task is pruned lazily from scheduler structures.
	Alive() bool

	// Sleeping reports whether the task is parked awaiting an offloaded
	// call or an explicit Ready.
	Sleeping() bool
}
