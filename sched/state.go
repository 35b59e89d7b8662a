// File: sched/state.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sched

import "sync/atomic"

const (
	flagAlive uint32 = 1 << iota
	flagSleeping
)

// procState packs the alive and sleeping flags into one atomic word so
// worker-pool completions can inspect them without taking the kernel mutex.
type procState struct {
	v atomic.Uint32
}

func (s *procState) alive() bool    { return s.v.Load()&flagAlive != 0 }
func (s *procState) sleeping() bool { return s.v.Load()&flagSleeping != 0 }

func (s *procState) setAlive(on bool)    { s.set(flagAlive, on) }
func (s *procState) setSleeping(on bool) { s.set(flagSleeping, on) }

func (s *procState) set(flag uint32, on bool) {
	for {
		old := s.v.Load()
		var next uint32
		if on {
			next = old | flag
		} else {
			next = old &^ flag
		}
		if s.v.CompareAndSwap(old, next) {
			return
		}
	}
}
