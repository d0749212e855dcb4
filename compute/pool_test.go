package compute

import (
	"sync/atomic"
	"testing"
)

func TestDispatchCoversAllItemsOnce(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	// Large enough to force the fan-out path.
	const n = 10_000
	hits := make([]int32, n)

	p.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("item %d processed %d times, want exactly once", i, h)
		}
	}
}

func TestDispatchSmallRunsInline(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	var workers []int
	p.Dispatch(8, func(w, start, end int) {
		workers = append(workers, w)
		if start != 0 || end != 8 {
			t.Errorf("inline chunk = [%d, %d), want [0, 8)", start, end)
		}
	})

	if len(workers) != 1 || workers[0] != 0 {
		t.Errorf("small dispatch used workers %v, want single inline call", workers)
	}
}

func TestDispatchIsABarrier(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	const n = 4096
	buf := make([]float32, n)

	// Two dependent passes: the second reads what the first wrote. If
	// Dispatch returned before all chunks finished, the second pass
	// would observe zeros.
	p.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			buf[i] = 1
		}
	})

	var missing atomic.Int32
	p.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			if buf[i] != 1 {
				missing.Add(1)
			}
		}
	})

	if missing.Load() != 0 {
		t.Errorf("second pass observed %d unwritten items", missing.Load())
	}
}

func TestDispatchZeroItems(t *testing.T) {
	p := NewPool(2)
	defer p.Close()

	called := false
	p.Dispatch(0, func(_, _, _ int) { called = true })
	if called {
		t.Error("Dispatch(0) should not invoke fn")
	}
}
