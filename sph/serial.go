package sph

import (
	"time"

	"github.com/ArminGEtemad/sph2d/grid"
	"github.com/ArminGEtemad/sph2d/kernel"
)

// Serial is the sequential reference engine: one logical thread of
// control, a hashmap spatial index, and the four stages run to
// completion in order. It is the ground truth the parallel backend is
// validated against.
type Serial struct {
	core
	grid *grid.Map
}

var _ Engine = (*Serial)(nil)

// NewSerial constructs a sequential engine. Configuration errors are
// fatal here, never later.
func NewSerial(cfg Config) (*Serial, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Serial{
		core: core{cfg: cfg, kern: kernel.New(cfg.H)},
		grid: grid.NewMap(cfg.H),
	}, nil
}

// Step advances one tick. The grid is rebuilt from current positions
// first; a grid from the previous tick would be stale.
func (e *Serial) Step(dt, xMax, xMin, restitution float32) {
	t0 := time.Now()
	e.grid.Reset()
	for i := range e.ps {
		e.grid.Insert(int32(i), e.ps[i].Pos.X, e.ps[i].Pos.Y)
	}
	t1 := time.Now()

	neigh := e.grid.ForNeighbors
	for i := range e.ps {
		e.densityPressureAt(i, neigh)
	}
	t2 := time.Now()

	for i := range e.ps {
		e.forcesAt(i, neigh)
	}
	t3 := time.Now()

	for i := range e.ps {
		integrate(&e.ps[i], dt)
	}
	t4 := time.Now()

	for i := range e.ps {
		applyBounds(&e.ps[i], xMax, xMin, restitution)
	}
	t5 := time.Now()

	e.times = StageTimes{
		Grid:      t1.Sub(t0),
		Density:   t2.Sub(t1),
		Forces:    t3.Sub(t2),
		Integrate: t4.Sub(t3),
		Boundary:  t5.Sub(t4),
	}
}

// Close is a no-op; the sequential engine holds no pooled resources.
func (e *Serial) Close() {}
