package sph

import (
	"time"

	"github.com/ArminGEtemad/sph2d/compute"
	"github.com/ArminGEtemad/sph2d/grid"
	"github.com/ArminGEtemad/sph2d/kernel"
)

// Parallel is the data-parallel engine. Each stage of the tick is one
// dispatch over the particle range on a persistent worker pool; the
// grid build runs as its own fixed sequence of dispatches inside
// grid.Builder. Returning from a dispatch is the barrier that makes the
// previous stage's writes visible to the next, so a stage only ever
// reads fields the stage before it has finalized.
type Parallel struct {
	core
	pool    *compute.Pool
	builder *grid.Builder
	csr     *grid.CSR

	// Position scratch in the layout the grid passes consume.
	xs, ys []float32

	readback *compute.Readback
	records  []compute.ParticleRecord
}

var _ Engine = (*Parallel)(nil)

// NewParallel constructs a data-parallel engine with cfg.Workers
// workers (0 = GOMAXPROCS). Configuration errors are fatal here.
func NewParallel(cfg Config) (*Parallel, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Parallel{
		core:     core{cfg: cfg, kern: kernel.New(cfg.H)},
		pool:     compute.NewPool(cfg.Workers),
		builder:  grid.NewBuilder(),
		readback: compute.NewReadback(),
	}, nil
}

// Step advances one tick as a fixed DAG of dispatches: position
// refresh, grid build (histogram → block scan → block-sums scan →
// add-back → scatter), then density/pressure, forces, integration and
// boundary, one dispatch each.
func (e *Parallel) Step(dt, xMax, xMin, restitution float32) {
	n := len(e.ps)

	t0 := time.Now()
	if cap(e.xs) < n {
		e.xs = make([]float32, n)
		e.ys = make([]float32, n)
	}
	e.xs = e.xs[:n]
	e.ys = e.ys[:n]
	e.pool.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			e.xs[i] = e.ps[i].Pos.X
			e.ys[i] = e.ps[i].Pos.Y
		}
	})
	e.csr = e.builder.Build(e.xs, e.ys, e.cfg.H, e.pool)
	t1 := time.Now()

	neigh := e.csr.ForNeighbors
	e.pool.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			e.densityPressureAt(i, neigh)
		}
	})
	t2 := time.Now()

	e.pool.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			e.forcesAt(i, neigh)
		}
	})
	t3 := time.Now()

	e.pool.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			integrate(&e.ps[i], dt)
		}
	})
	t4 := time.Now()

	e.pool.Dispatch(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			applyBounds(&e.ps[i], xMax, xMin, restitution)
		}
	})
	t5 := time.Now()

	e.times = StageTimes{
		Grid:      t1.Sub(t0),
		Density:   t2.Sub(t1),
		Forces:    t3.Sub(t2),
		Integrate: t4.Sub(t3),
		Boundary:  t5.Sub(t4),
	}
}

// PublishSnapshot packs the particle state into the transport layout
// and publishes it to the engine's readback buffer. Callers retrieve it
// with the map-then-poll protocol; this is how the parity harness reads
// the parallel side, exercising the same path an external backend
// would.
func (e *Parallel) PublishSnapshot() *compute.Readback {
	n := len(e.ps)
	if cap(e.records) < n {
		e.records = make([]compute.ParticleRecord, n)
	}
	e.records = e.records[:n]
	for i, p := range e.ps {
		e.records[i] = compute.ParticleRecord{
			Pos: [2]float32{p.Pos.X, p.Pos.Y},
			Vel: [2]float32{p.Vel.X, p.Vel.Y},
			Acc: [2]float32{p.Acc.X, p.Acc.Y},
			Rho: p.Rho,
			P:   p.P,
		}
	}
	e.readback.Publish(compute.EncodeParticles(e.records))
	return e.readback
}

// GridParams returns the transport record of the most recent grid
// build. Zero before the first Step.
func (e *Parallel) GridParams() compute.GridParamsRecord {
	if e.csr == nil {
		return compute.GridParamsRecord{}
	}
	p := e.csr.Params
	return compute.GridParamsRecord{
		Origin:   [2]float32{p.OriginX, p.OriginY},
		CellSize: p.CellSize,
		Dims:     [2]uint32{p.NX, p.NY},
	}
}

// Close stops the worker pool.
func (e *Parallel) Close() {
	e.pool.Close()
}
