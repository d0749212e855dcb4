// Package compute provides the execution and transport layer for the
// data-parallel simulation backend: a persistent worker pool whose
// dispatches act as barriers between pipeline stages, packed binary
// buffer layouts shared with external consumers, and an asynchronous
// map-then-poll readback path for retrieving results.
package compute

import (
	"runtime"
	"sync"
)

// inlineThreshold is the minimum work-item count worth fanning out.
// Below this, goroutine handoff costs more than the work itself.
const inlineThreshold = 64

// task is one contiguous chunk of a dispatch.
type task struct {
	fn         func(worker, start, end int)
	worker     int
	start, end int
}

// Pool is a fixed set of persistent worker goroutines. Each Dispatch
// fans a range of work items out in contiguous chunks and blocks until
// every chunk has completed, so returning from Dispatch is the barrier
// between successive pipeline stages: a later stage never observes a
// partially written earlier stage.
type Pool struct {
	numWorkers int

	workChan chan task
	doneChan chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  bool
}

// NewPool creates a pool with the given worker count. Zero or negative
// means GOMAXPROCS. Workers start lazily on the first large dispatch.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{numWorkers: workers}
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.numWorkers
}

// start launches the persistent worker goroutines.
func (p *Pool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan task, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case t, ok := <-p.workChan:
			if !ok {
				return
			}
			t.fn(t.worker, t.start, t.end)
			p.doneChan <- struct{}{}
		}
	}
}

// Dispatch runs fn over n work items split into contiguous chunks, one
// per worker, and blocks until all chunks finish. fn receives the worker
// index so callers can keep per-worker scratch without sharing. Small
// dispatches run inline on the calling goroutine.
func (p *Pool) Dispatch(n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	if n < inlineThreshold || p.numWorkers == 1 {
		fn(0, 0, n)
		return
	}

	if !p.running {
		p.start()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		p.workChan <- task{fn: fn, worker: w, start: start, end: end}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-p.doneChan
	}
}

// Close signals all workers to exit and waits for them. The pool must
// not be used after Close.
func (p *Pool) Close() {
	if !p.running {
		return
	}
	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}
