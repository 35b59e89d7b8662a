// File: sched/runqueue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FIFO run queue with rotate-to-tail and head insertion. Head insertion is
// reserved for syscall completions, which are dispatched with priority over
// already-queued cooperative work.

package sched

type runQueue struct {
	procs []*Proc
}

func (q *runQueue) len() int { return len(q.procs) }

// head returns the front proc without removing it, or nil when empty.
func (q *runQueue) head() *Proc {
	if len(q.procs) == 0 {
		return nil
	}
	return q.procs[0]
}

func (q *runQueue) pushBack(p *Proc) {
	q.procs = append(q.procs, p)
}

func (q *runQueue) pushFront(p *Proc) {
	q.procs = append([]*Proc{p}, q.procs...)
}

func (q *runQueue) popFront() *Proc {
	if len(q.procs) == 0 {
		return nil
	}
	p := q.procs[0]
	q.procs[0] = nil
	q.procs = q.procs[1:]
	return p
}

// rotate moves the head to the tail.
func (q *runQueue) rotate() {
	if len(q.procs) < 2 {
		return
	}
	p := q.popFront()
	q.pushBack(p)
}

// remove deletes the first occurrence of p; best-effort, no error if absent.
func (q *runQueue) remove(p *Proc) bool {
	for i, cur := range q.procs {
		if cur == p {
			copy(q.procs[i:], q.procs[i+1:])
			q.procs[len(q.procs)-1] = nil
			q.procs = q.procs[:len(q.procs)-1]
			return true
		}
	}
	return false
}
