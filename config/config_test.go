package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbeddedDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Sim.H != 0.045 {
		t.Errorf("Sim.H = %v, want 0.045", cfg.Sim.H)
	}
	if cfg.Sim.RestDensity != 1000 {
		t.Errorf("Sim.RestDensity = %v, want 1000", cfg.Sim.RestDensity)
	}
	if cfg.Bounds.Restitution != -3.0 {
		t.Errorf("Bounds.Restitution = %v, want -3.0", cfg.Bounds.Restitution)
	}
	if cfg.Lattice.NX != 71 || cfg.Lattice.NY != 71 {
		t.Errorf("Lattice = %dx%d, want 71x71", cfg.Lattice.NX, cfg.Lattice.NY)
	}
	if cfg.Parity.Ticks != 10 {
		t.Errorf("Parity.Ticks = %d, want 10", cfg.Parity.Ticks)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("sim:\n  h: 0.1\n  viscosity: 0.5\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sim.H != 0.1 {
		t.Errorf("Sim.H = %v, want override 0.1", cfg.Sim.H)
	}
	if cfg.Sim.Viscosity != 0.5 {
		t.Errorf("Sim.Viscosity = %v, want override 0.5", cfg.Sim.Viscosity)
	}
	// Fields absent from the override keep their defaults.
	if cfg.Sim.RestDensity != 1000 {
		t.Errorf("Sim.RestDensity = %v, want default 1000", cfg.Sim.RestDensity)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero h", func(c *Config) { c.Sim.H = 0 }},
		{"negative mass", func(c *Config) { c.Sim.ParticleMass = -1 }},
		{"zero dt", func(c *Config) { c.Sim.DT = 0 }},
		{"inverted bounds", func(c *Config) { c.Bounds.XMin = 5; c.Bounds.XMax = -5 }},
		{"zero lattice", func(c *Config) { c.Lattice.NX = 0 }},
		{"zero spacing", func(c *Config) { c.Lattice.Spacing = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestDerivedMassFromSpacing(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Sim.ParticleMass = 0
	cfg.computeDerived()

	want := float32(1000 * 0.04 * 0.04)
	if got := cfg.Derived.SimCfg.ParticleMass; got != want {
		t.Errorf("derived mass = %v, want %v", got, want)
	}
}

func TestDerivedMirrorsSim(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	sc := cfg.Derived.SimCfg
	if sc.H != float32(cfg.Sim.H) {
		t.Errorf("SimCfg.H = %v, want %v", sc.H, cfg.Sim.H)
	}
	if sc.ParticleMass != 1.6 {
		t.Errorf("SimCfg.ParticleMass = %v, want 1.6 from defaults", sc.ParticleMass)
	}
	if cfg.Derived.DT32 != float32(cfg.Sim.DT) {
		t.Errorf("DT32 = %v, want %v", cfg.Derived.DT32, cfg.Sim.DT)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Sim != cfg.Sim || again.Bounds != cfg.Bounds {
		t.Errorf("round trip changed config: %+v vs %+v", again.Sim, cfg.Sim)
	}
}
