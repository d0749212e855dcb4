// Package sph implements the 2D smoothed-particle-hydrodynamics solver:
// a particle state advanced each tick by rebuilding a spatial index from
// current positions, then running the density/pressure, force,
// integration and boundary stages in order. Two engines share the exact
// same stage math behind the Engine interface: a sequential reference
// and a data-parallel worker-pool backend.
package sph

import "time"

// Vec2 is a 2D float32 vector.
type Vec2 struct {
	X, Y float32
}

// Particle carries the full per-particle simulation state. Fields are
// mutated in place, one field group per pipeline stage, never by two
// stages at once.
type Particle struct {
	Pos Vec2
	Vel Vec2
	Acc Vec2
	Rho float32 // density
	P   float32 // pressure
}

// StageTimes holds the wall-clock duration of each stage of the most
// recent tick, for perf telemetry.
type StageTimes struct {
	Grid      time.Duration
	Density   time.Duration
	Forces    time.Duration
	Integrate time.Duration
	Boundary  time.Duration
}

// Total returns the summed stage durations.
func (s StageTimes) Total() time.Duration {
	return s.Grid + s.Density + s.Forces + s.Integrate + s.Boundary
}

// Engine is one simulation backend. The backend is chosen at
// construction time; there is no mid-run switching. Engines own their
// particle array exclusively and are not safe for concurrent use.
type Engine interface {
	// SeedLattice appends nx×ny particles on a regular grid at
	// (ix·spacing, iy·spacing), row by row.
	SeedLattice(nx, ny int, spacing float32)

	// Step advances exactly one tick: grid rebuild, density/pressure,
	// forces, integration, boundary enforcement.
	Step(dt, xMax, xMin, restitution float32)

	// Snapshot returns a copy of the particle state in stable
	// particle-index order.
	Snapshot() []Particle

	// Len returns the particle count.
	Len() int

	// StageTimes reports per-stage timings of the last Step.
	StageTimes() StageTimes

	// Close releases any backend resources (worker pools).
	Close()
}
