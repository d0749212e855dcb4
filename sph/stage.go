package sph

import (
	"math"

	"github.com/ArminGEtemad/sph2d/kernel"
)

// neighborFunc enumerates every particle index in the 3×3 cell block
// around a position. Both grid forms provide one.
type neighborFunc func(x, y float32, fn func(j int32))

// core holds the particle state and per-particle stage math shared by
// both engines. Every formula here is duplicated bit-for-bit between
// backends by construction, which is what makes the parity thresholds
// meaningful.
type core struct {
	cfg   Config
	kern  kernel.Kernel
	ps    []Particle
	times StageTimes
}

// SeedLattice appends nx×ny particles at (ix·spacing, iy·spacing).
func (c *core) SeedLattice(nx, ny int, spacing float32) {
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			c.ps = append(c.ps, Particle{
				Pos: Vec2{X: float32(ix) * spacing, Y: float32(iy) * spacing},
			})
		}
	}
}

// SetParticles replaces the particle state wholesale, e.g. when
// restoring a saved snapshot.
func (c *core) SetParticles(ps []Particle) {
	c.ps = append(c.ps[:0], ps...)
}

// Len returns the particle count.
func (c *core) Len() int {
	return len(c.ps)
}

// Snapshot returns a copy of the particle state.
func (c *core) Snapshot() []Particle {
	out := make([]Particle, len(c.ps))
	copy(out, c.ps)
	return out
}

// StageTimes reports per-stage timings of the last Step.
func (c *core) StageTimes() StageTimes {
	return c.times
}

// ApplyImpulse adds (ix, iy) to the velocity of every particle within
// radius of (x, y). The interactive viewer uses this for mouse drags.
func (c *core) ApplyImpulse(x, y, radius, ix, iy float32) {
	r2 := radius * radius
	for i := range c.ps {
		dx := c.ps[i].Pos.X - x
		dy := c.ps[i].Pos.Y - y
		if dx*dx+dy*dy <= r2 {
			c.ps[i].Vel.X += ix
			c.ps[i].Vel.Y += iy
		}
	}
}

// densityPressureAt computes rho_i over the neighbor block (including i
// itself) and the clamped equation of state p_i = k·max(rho_i − rho_0, 0).
func (c *core) densityPressureAt(i int, neigh neighborFunc) {
	pi := &c.ps[i]
	m := c.cfg.ParticleMass

	var rho float32
	neigh(pi.Pos.X, pi.Pos.Y, func(j int32) {
		q := &c.ps[j]
		dx := pi.Pos.X - q.Pos.X
		dy := pi.Pos.Y - q.Pos.Y
		rho += m * c.kern.Poly6(dx*dx+dy*dy)
	})

	pi.Rho = rho
	over := rho - c.cfg.RestDensity
	if over < 0 {
		over = 0
	}
	pi.P = c.cfg.Stiffness * over
}

// forcesAt accumulates pressure, viscosity and gravity into acc_i.
//
// The pressure term divides by the neighbor's density only, not the
// symmetric mean. The parity thresholds are calibrated against exactly
// this form; do not substitute the textbook one.
func (c *core) forcesAt(i int, neigh neighborFunc) {
	pi := &c.ps[i]
	m := c.cfg.ParticleMass
	mu := c.cfg.Viscosity
	h2 := c.kern.H2

	ax := c.cfg.GravityX
	ay := c.cfg.GravityY

	neigh(pi.Pos.X, pi.Pos.Y, func(j int32) {
		if int(j) == i {
			return
		}
		q := &c.ps[j]
		dx := pi.Pos.X - q.Pos.X
		dy := pi.Pos.Y - q.Pos.Y
		r2 := dx*dx + dy*dy
		if r2 >= h2 {
			return
		}
		r := float32(math.Sqrt(float64(r2)))

		gx, gy := c.kern.SpikyGrad(dx, dy, r)
		ps := -m * (pi.P + q.P) / (2 * q.Rho)
		ax += ps * gx
		ay += ps * gy

		vs := mu * m * c.kern.ViscLap(r) / q.Rho
		ax += vs * (q.Vel.X - pi.Vel.X)
		ay += vs * (q.Vel.Y - pi.Vel.Y)
	})

	pi.Acc.X = ax
	pi.Acc.Y = ay
}

// integrate advances one particle with semi-implicit Euler.
func integrate(p *Particle, dt float32) {
	p.Vel.X += p.Acc.X * dt
	p.Vel.Y += p.Acc.Y * dt
	p.Pos.X += p.Vel.X * dt
	p.Pos.Y += p.Vel.Y * dt
}

// applyBounds reflects a particle off the floor and the two side walls.
// There is no ceiling. The restitution coefficient multiplies the
// reflected velocity component directly; a negative value both reverses
// and scales it, so magnitudes above one amplify the bounce. That is a
// deliberate visual effect, not energy-conserving physics.
func applyBounds(p *Particle, xMax, xMin, restitution float32) {
	if p.Pos.Y < 0 {
		p.Pos.Y = 0
		p.Vel.Y *= restitution
	}
	if p.Pos.X > xMax {
		p.Pos.X = xMax
		p.Vel.X *= restitution
	}
	if p.Pos.X < xMin {
		p.Pos.X = xMin
		p.Vel.X *= restitution
	}
}
