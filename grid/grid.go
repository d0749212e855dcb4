// Package grid builds the per-tick spatial index the solver uses to
// enumerate each particle's 3×3 block of neighbor cells in O(1)
// amortized time. Two interchangeable builders exist: a hashmap builder
// (the sequential reference) and a counting-sort builder producing a
// compressed starts/entries index suitable for data-parallel backends.
//
// Both indexes are transient: they are rebuilt from current positions at
// the start of every tick and never carried across ticks.
package grid

import "math"

// CellKey is an integer 2D cell coordinate, floor(position / cellSize).
type CellKey struct {
	X, Y int32
}

// CellOf returns the cell coordinate of a world position.
func CellOf(x, y, cellSize float32) (int32, int32) {
	return int32(math.Floor(float64(x / cellSize))), int32(math.Floor(float64(y / cellSize)))
}

// Params describes the cell layout of a built counting-sort grid, in
// the form transported to parallel backends: the world position of the
// minimum cell corner, the cell size and the grid dimensions.
type Params struct {
	OriginX  float32
	OriginY  float32
	CellSize float32
	NX, NY   uint32
}

// NumCells returns nx·ny.
func (p Params) NumCells() int {
	return int(p.NX) * int(p.NY)
}
