package control

import (
	"sync"
	"testing"
)

func TestMetricsRegistry_SetGet(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Set("tasks_spawned", 3)
	if v, ok := mr.Get("tasks_spawned"); !ok || v != 3 {
		t.Fatalf("Get = (%d, %v), want (3, true)", v, ok)
	}
	if _, ok := mr.Get("missing"); ok {
		t.Fatal("Get on missing key reported ok")
	}
}

func TestMetricsRegistry_AddAndSnapshot(t *testing.T) {
	mr := NewMetricsRegistry()
	mr.Add("signals_dropped", 2)
	mr.Add("signals_dropped", 3)
	snap := mr.GetSnapshot()
	if snap["signals_dropped"] != 5 {
		t.Fatalf("snapshot value = %d, want 5", snap["signals_dropped"])
	}
	// Snapshot must be a copy.
	snap["signals_dropped"] = 100
	if v, _ := mr.Get("signals_dropped"); v != 5 {
		t.Fatalf("registry mutated through snapshot: %d", v)
	}
}

func TestMetricsRegistry_Concurrent(t *testing.T) {
	mr := NewMetricsRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				mr.Add("n", 1)
				mr.GetSnapshot()
			}
		}()
	}
	wg.Wait()
	if v, _ := mr.Get("n"); v != 8000 {
		t.Fatalf("n = %d, want 8000", v)
	}
}
