// Package kernel provides the SPH smoothing kernels used by the fluid
// solver: poly6 for density, the spiky gradient for pressure forces and
// the viscosity Laplacian. All three are 2D-normalized and compactly
// supported on the smoothing radius h.
package kernel

import "math"

// Kernel precomputes the normalization constants for a fixed smoothing
// radius. Constructing one per engine keeps the per-pair evaluation down
// to a few multiplies.
type Kernel struct {
	H  float32 // smoothing radius
	H2 float32 // h²

	poly6Norm float32 // 4 / (π h⁸)
	spikyNorm float32 // -10 / (π h⁵)
	viscNorm  float32 // 40 / (π h⁵)
}

// New creates a kernel set for smoothing radius h. Callers must pass
// h > 0; the engine constructors validate this before reaching here.
func New(h float32) Kernel {
	h64 := float64(h)
	h2 := h64 * h64
	h5 := h2 * h2 * h64
	h8 := h5 * h2 * h64
	return Kernel{
		H:         h,
		H2:        float32(h2),
		poly6Norm: float32(4.0 / (math.Pi * h8)),
		spikyNorm: float32(-10.0 / (math.Pi * h5)),
		viscNorm:  float32(40.0 / (math.Pi * h5)),
	}
}

// Poly6 returns the density kernel 4/(πh⁸)·(h²−r²)³ for r² ≤ h², else 0.
// It takes the squared distance so density sums never pay for a sqrt.
func (k Kernel) Poly6(r2 float32) float32 {
	if r2 > k.H2 {
		return 0
	}
	d := k.H2 - r2
	return k.poly6Norm * d * d * d
}

// SpikyGrad returns the pressure-gradient kernel −10/(πh⁵)·(h−r)²·r̂
// evaluated for the offset (dx, dy) with |r| = r. Outside the open
// interval 0 < r < h the gradient is the zero vector; in particular two
// coincident particles exert no pressure on each other rather than
// dividing by zero during normalization.
func (k Kernel) SpikyGrad(dx, dy, r float32) (gx, gy float32) {
	if r <= 0 || r >= k.H {
		return 0, 0
	}
	d := k.H - r
	s := k.spikyNorm * d * d / r
	return s * dx, s * dy
}

// ViscLap returns the viscosity Laplacian 40/(πh⁵)·(h−r) for 0 < r < h,
// else 0.
func (k Kernel) ViscLap(r float32) float32 {
	if r <= 0 || r >= k.H {
		return 0
	}
	return k.viscNorm * (k.H - r)
}
