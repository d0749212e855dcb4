// Package parity runs the sequential and data-parallel engines through
// an identical scenario and verifies that their per-particle fields
// agree within calibrated thresholds. It is the gate for any change to
// the parallel backend.
package parity

import (
	"errors"
	"fmt"

	"github.com/ArminGEtemad/sph2d/compute"
	"github.com/ArminGEtemad/sph2d/config"
	"github.com/ArminGEtemad/sph2d/sph"
)

// ErrReadback reports a failure of the parallel side's map-then-poll
// snapshot protocol.
var ErrReadback = errors.New("parity: readback failed")

// relErrFloor guards the relative-error denominator so near-zero
// reference values don't explode the ratio.
const relErrFloor = 1e-6

// relErr is |b−a| / max(|a|, floor), with a the sequential reference.
func relErr(a, b float64) float64 {
	d := b - a
	if d < 0 {
		d = -d
	}
	den := a
	if den < 0 {
		den = -den
	}
	if den < relErrFloor {
		den = relErrFloor
	}
	return d / den
}

// Run seeds both engines from cfg, steps them cfg.Parity.Ticks times
// and compares the results field by field. The parallel side is read
// through the transport snapshot path rather than directly, so the
// encode/decode layer is part of what gets validated.
func Run(cfg *config.Config) (*Report, error) {
	simCfg := cfg.Derived.SimCfg

	ser, err := sph.NewSerial(simCfg)
	if err != nil {
		return nil, fmt.Errorf("parity: sequential engine: %w", err)
	}
	par, err := sph.NewParallel(simCfg)
	if err != nil {
		return nil, fmt.Errorf("parity: parallel engine: %w", err)
	}
	defer par.Close()

	ser.SeedLattice(cfg.Lattice.NX, cfg.Lattice.NY, float32(cfg.Lattice.Spacing))
	par.SeedLattice(cfg.Lattice.NX, cfg.Lattice.NY, float32(cfg.Lattice.Spacing))

	dt := cfg.Derived.DT32
	xMax := float32(cfg.Bounds.XMax)
	xMin := float32(cfg.Bounds.XMin)
	rest := float32(cfg.Bounds.Restitution)

	for tick := 0; tick < cfg.Parity.Ticks; tick++ {
		ser.Step(dt, xMax, xMin, rest)
		par.Step(dt, xMax, xMin, rest)
	}

	want := ser.Snapshot()
	got, err := readParallel(par)
	if err != nil {
		return nil, err
	}
	if len(got) != len(want) {
		return nil, fmt.Errorf("%w: decoded %d particles, sequential has %d",
			ErrReadback, len(got), len(want))
	}

	return compare(want, got, cfg.Parity), nil
}

// readParallel pulls the parallel engine's state through the full
// publish/map/poll/decode path.
func readParallel(par *sph.Parallel) ([]compute.ParticleRecord, error) {
	rb := par.PublishSnapshot()
	rb.RequestMap()
	switch state := rb.Poll(); state {
	case compute.MapReady:
	case compute.MapFailed:
		return nil, fmt.Errorf("%w: map request failed", ErrReadback)
	default:
		return nil, fmt.Errorf("%w: unexpected map state %v", ErrReadback, state)
	}
	defer rb.Unmap()

	records, err := compute.DecodeParticles(rb.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadback, err)
	}
	return records, nil
}

// fieldSpec describes how one scalar field is extracted and gated.
type fieldSpec struct {
	name    string
	serial  func(p sph.Particle) float64
	par     func(r compute.ParticleRecord) float64
	bounded bool
	pass    func(abs, rel float64, t config.ParityConfig) bool
}

// fieldSpecs lists every compared field. Density gates on relative
// error alone. Pressure gets an absolute floor: the clamped equation of
// state makes tiny pressures noisy in relative terms while being
// physically negligible. Acceleration accepts either bound for the same
// reason at the opposite scale. Position and velocity drift with
// summation order over many ticks, so they are reported but never
// gated.
var fieldSpecs = []fieldSpec{
	{
		name:    "rho",
		serial:  func(p sph.Particle) float64 { return float64(p.Rho) },
		par:     func(r compute.ParticleRecord) float64 { return float64(r.Rho) },
		bounded: true,
		pass:    func(_, rel float64, t config.ParityConfig) bool { return rel <= t.MaxRelRho },
	},
	{
		name:    "p",
		serial:  func(p sph.Particle) float64 { return float64(p.P) },
		par:     func(r compute.ParticleRecord) float64 { return float64(r.P) },
		bounded: true,
		pass: func(abs, rel float64, t config.ParityConfig) bool {
			return rel <= t.MaxRelP || abs <= t.PressureFloor
		},
	},
	{
		name:    "acc_x",
		serial:  func(p sph.Particle) float64 { return float64(p.Acc.X) },
		par:     func(r compute.ParticleRecord) float64 { return float64(r.Acc[0]) },
		bounded: true,
		pass: func(abs, rel float64, t config.ParityConfig) bool {
			return abs <= t.MaxAbsAcc || rel <= t.MaxRelAcc
		},
	},
	{
		name:    "acc_y",
		serial:  func(p sph.Particle) float64 { return float64(p.Acc.Y) },
		par:     func(r compute.ParticleRecord) float64 { return float64(r.Acc[1]) },
		bounded: true,
		pass: func(abs, rel float64, t config.ParityConfig) bool {
			return abs <= t.MaxAbsAcc || rel <= t.MaxRelAcc
		},
	},
	{
		name:   "pos_x",
		serial: func(p sph.Particle) float64 { return float64(p.Pos.X) },
		par:    func(r compute.ParticleRecord) float64 { return float64(r.Pos[0]) },
	},
	{
		name:   "pos_y",
		serial: func(p sph.Particle) float64 { return float64(p.Pos.Y) },
		par:    func(r compute.ParticleRecord) float64 { return float64(r.Pos[1]) },
	},
	{
		name:   "vel_x",
		serial: func(p sph.Particle) float64 { return float64(p.Vel.X) },
		par:    func(r compute.ParticleRecord) float64 { return float64(r.Vel[0]) },
	},
	{
		name:   "vel_y",
		serial: func(p sph.Particle) float64 { return float64(p.Vel.Y) },
		par:    func(r compute.ParticleRecord) float64 { return float64(r.Vel[1]) },
	},
}

// compare builds the per-field report against the sequential reference.
func compare(want []sph.Particle, got []compute.ParticleRecord, t config.ParityConfig) *Report {
	rep := &Report{
		Ticks:     t.Ticks,
		Particles: len(want),
		Pass:      true,
	}

	for _, fs := range fieldSpecs {
		fr := compareField(want, got, fs, t)
		if fr.Gated && !fr.Pass {
			rep.Pass = false
		}
		rep.Fields = append(rep.Fields, fr)
	}
	return rep
}

func compareField(want []sph.Particle, got []compute.ParticleRecord, fs fieldSpec, t config.ParityConfig) FieldReport {
	fr := FieldReport{
		Field: fs.name,
		Gated: fs.bounded,
		Pass:  true,
	}

	relErrs := make([]float64, len(want))
	offenders := make([]Offender, 0, len(want))
	for i := range want {
		a := fs.serial(want[i])
		b := fs.par(got[i])
		abs := b - a
		if abs < 0 {
			abs = -abs
		}
		rel := relErr(a, b)
		relErrs[i] = rel

		if abs > fr.MaxAbs {
			fr.MaxAbs = abs
		}
		if rel > fr.MaxRel {
			fr.MaxRel = rel
		}

		if fs.bounded && !fs.pass(abs, rel, t) {
			fr.Pass = false
			fr.Violations++
			offenders = append(offenders, Offender{
				Index: i, Serial: a, Parallel: b, AbsErr: abs, RelErr: rel,
			})
		}
	}

	fr.MeanRel, fr.P99Rel = relErrStats(relErrs)
	fr.Offenders = topOffenders(offenders, t.TopOffenders)
	return fr
}
