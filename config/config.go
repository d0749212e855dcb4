// Package config provides configuration loading and access for the
// simulation, the parity harness and the viewer.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ArminGEtemad/sph2d/sph"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid reports a malformed configuration. It is fatal at startup;
// nothing downstream tries to repair a bad config.
var ErrInvalid = errors.New("config: invalid")

// Config holds all tunable parameters.
type Config struct {
	Sim       SimConfig       `yaml:"sim"`
	Bounds    BoundsConfig    `yaml:"bounds"`
	Lattice   LatticeConfig   `yaml:"lattice"`
	Parity    ParityConfig    `yaml:"parity"`
	Viewer    ViewerConfig    `yaml:"viewer"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// SimConfig holds the physical parameters of the fluid.
type SimConfig struct {
	H            float64 `yaml:"h"`             // smoothing radius
	RestDensity  float64 `yaml:"rest_density"`  // rho_0
	Stiffness    float64 `yaml:"stiffness"`     // equation-of-state k
	Viscosity    float64 `yaml:"viscosity"`     // mu
	ParticleMass float64 `yaml:"particle_mass"` // 0 = rest_density · spacing²
	GravityX     float64 `yaml:"gravity_x"`
	GravityY     float64 `yaml:"gravity_y"`
	DT           float64 `yaml:"dt"`      // seconds per tick
	Workers      int     `yaml:"workers"` // parallel backend workers, 0 = GOMAXPROCS
}

// BoundsConfig holds the reflecting boundary parameters. The floor sits
// at y = 0 and there is no ceiling.
type BoundsConfig struct {
	XMin        float64 `yaml:"x_min"`
	XMax        float64 `yaml:"x_max"`
	Restitution float64 `yaml:"restitution"` // negative reverses and scales the bounce
}

// LatticeConfig holds the initial particle seeding.
type LatticeConfig struct {
	NX      int     `yaml:"nx"`
	NY      int     `yaml:"ny"`
	Spacing float64 `yaml:"spacing"`
}

// ParityConfig holds the cross-backend comparison thresholds.
type ParityConfig struct {
	Ticks         int     `yaml:"ticks"`
	MaxRelRho     float64 `yaml:"max_rel_rho"`
	MaxRelP       float64 `yaml:"max_rel_p"`
	PressureFloor float64 `yaml:"pressure_floor"` // absolute |p| error allowance
	MaxAbsAcc     float64 `yaml:"max_abs_acc"`
	MaxRelAcc     float64 `yaml:"max_rel_acc"`
	TopOffenders  int     `yaml:"top_offenders"` // worst particles listed per field
}

// ViewerConfig holds display settings for the interactive viewer.
type ViewerConfig struct {
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	TargetFPS         int     `yaml:"target_fps"`
	RenderScale       float64 `yaml:"render_scale"`       // pixels per world unit
	ParticleRadius    float64 `yaml:"particle_radius"`    // pixels
	InteractionRadius float64 `yaml:"interaction_radius"` // world units, mouse drag
	Impulse           float64 `yaml:"impulse"`            // drag velocity multiplier
}

// TelemetryConfig holds perf/stats output parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // ticks averaged per perf report
	LogEvery   int `yaml:"log_every"`   // ticks between headless stat lines
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SimCfg sph.Config // float32 mirror consumed by the engines
	DT32   float32
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations the solver cannot run with.
func (c *Config) Validate() error {
	if c.Sim.H <= 0 {
		return fmt.Errorf("%w: sim.h = %v, must be > 0", ErrInvalid, c.Sim.H)
	}
	if c.Sim.ParticleMass < 0 {
		return fmt.Errorf("%w: sim.particle_mass = %v, must be >= 0 (0 derives from spacing)", ErrInvalid, c.Sim.ParticleMass)
	}
	if c.Sim.DT <= 0 {
		return fmt.Errorf("%w: sim.dt = %v, must be > 0", ErrInvalid, c.Sim.DT)
	}
	if c.Bounds.XMin >= c.Bounds.XMax {
		return fmt.Errorf("%w: bounds x_min %v >= x_max %v", ErrInvalid, c.Bounds.XMin, c.Bounds.XMax)
	}
	if c.Lattice.NX <= 0 || c.Lattice.NY <= 0 || c.Lattice.Spacing <= 0 {
		return fmt.Errorf("%w: lattice %dx%d spacing %v", ErrInvalid, c.Lattice.NX, c.Lattice.NY, c.Lattice.Spacing)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	mass := c.Sim.ParticleMass
	if mass == 0 {
		// Lattice convention: each particle carries one cell's worth of
		// rest-density fluid.
		mass = c.Sim.RestDensity * c.Lattice.Spacing * c.Lattice.Spacing
	}

	c.Derived.DT32 = float32(c.Sim.DT)
	c.Derived.SimCfg = sph.Config{
		H:            float32(c.Sim.H),
		RestDensity:  float32(c.Sim.RestDensity),
		Stiffness:    float32(c.Sim.Stiffness),
		Viscosity:    float32(c.Sim.Viscosity),
		ParticleMass: float32(mass),
		GravityX:     float32(c.Sim.GravityX),
		GravityY:     float32(c.Sim.GravityY),
		Workers:      c.Sim.Workers,
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
