// File: sched/proc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Proc is one cooperatively scheduled task: a goroutine gated on a resume
// channel. The channel carries at most one token, so a switch into a proc
// that has not blocked yet is buffered rather than lost.

package sched

import "log"

// Proc is a cooperatively scheduled task owned by a Kernel.
type Proc struct {
	id     uint64
	k      *Kernel
	fn     func(*Proc)
	resume chan struct{}
	state  procState
	main   bool
}

func newProc(k *Kernel, fn func(*Proc)) *Proc {
	p := &Proc{
		id:     k.idSeq.Add(1),
		k:      k,
		fn:     fn,
		resume: make(chan struct{}, 1),
	}
	p.state.setAlive(true)
	return p
}

// newMainProc models the context that constructed the kernel. It has no
// body; its "execution" is whatever code drives Run.
func newMainProc(k *Kernel) *Proc {
	p := &Proc{
		id:     k.idSeq.Add(1),
		k:      k,
		resume: make(chan struct{}, 1),
		main:   true,
	}
	p.state.setAlive(true)
	return p
}

// ID returns the proc's kernel-unique identity.
func (p *Proc) ID() uint64 { return p.id }

// Alive reports whether the proc's body has not yet returned or panicked.
func (p *Proc) Alive() bool { return p.state.alive() }

// Sleeping reports whether the proc is parked.
func (p *Proc) Sleeping() bool { return p.state.sleeping() }

// notify hands the logical CPU to p. Non-blocking: the one-token buffer
// absorbs a handoff that arrives before p has reached wait.
func (p *Proc) notify() {
	select {
	case p.resume <- struct{}{}:
	default:
	}
}

// wait blocks until another proc switches into p, then records p as the
// current task.
func (p *Proc) wait() {
	<-p.resume
	p.k.setCurrent(p)
}

// start launches the proc's goroutine, parked until the first dispatch.
func (p *Proc) start() {
	go p.body()
}

func (p *Proc) body() {
	p.wait()
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("sched: proc %d panicked: %v", p.id, r)
			}
		}()
		p.fn(p)
	}()
	p.state.setAlive(false)
	p.k.procExited()
	// Hand the CPU to the next candidate. schedule returns immediately
	// for a dead caller, letting this goroutine exit.
	p.k.schedule()
}
