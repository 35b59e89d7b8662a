package concurrency

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRing_FIFOAndBounds(t *testing.T) {
	r := NewRing[int](5)
	for i := 0; i < 5; i++ {
		if !r.Enqueue(i) {
			t.Fatalf("enqueue %d failed on non-full ring", i)
		}
	}
	if r.Enqueue(99) {
		t.Fatal("enqueue succeeded on full ring")
	}
	if r.Len() != 5 {
		t.Fatalf("Len = %d, want 5", r.Len())
	}
	for i := 0; i < 5; i++ {
		v, ok := r.Dequeue()
		if !ok || v != i {
			t.Fatalf("dequeue = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := r.Dequeue(); ok {
		t.Fatal("dequeue succeeded on empty ring")
	}
}

func TestRing_ExactCapacity(t *testing.T) {
	// Capacity must not round up: a 5-slot ring holds exactly 5.
	r := NewRing[int](5)
	if r.Cap() != 5 {
		t.Fatalf("Cap = %d, want 5", r.Cap())
	}
	n := 0
	for r.Enqueue(n) {
		n++
	}
	if n != 5 {
		t.Fatalf("ring accepted %d items, want 5", n)
	}
}

func TestRing_MPMC(t *testing.T) {
	r := NewRing[int](1024)
	producers := 8
	consumers := 8
	perProducer := 5000

	var sentSum, receivedSum, receivedCount int64
	total := int64(producers * perProducer)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(pid int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				val := pid*perProducer + i + 1
				for !r.Enqueue(val) {
					runtime.Gosched()
				}
				atomic.AddInt64(&sentSum, int64(val))
			}
		}(p)
	}

	consumerWg := sync.WaitGroup{}
	for c := 0; c < consumers; c++ {
		consumerWg.Add(1)
		go func() {
			defer consumerWg.Done()
			for {
				if val, ok := r.Dequeue(); ok {
					atomic.AddInt64(&receivedSum, int64(val))
					if atomic.AddInt64(&receivedCount, 1) == total {
						return
					}
				} else {
					if atomic.LoadInt64(&receivedCount) >= total {
						return
					}
					runtime.Gosched()
				}
			}
		}()
	}

	wg.Wait()

	done := make(chan struct{})
	go func() {
		consumerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		if sentSum != receivedSum {
			t.Errorf("checksum mismatch: sent %d, received %d", sentSum, receivedSum)
		}
	case <-time.After(5 * time.Second):
		t.Errorf("timeout waiting for consumers, received %d/%d",
			atomic.LoadInt64(&receivedCount), total)
	}
}
