package sph

import (
	"errors"
	"fmt"
)

// DefaultGravityY is the default downward gravity.
const DefaultGravityY = -9.81

// ErrConfig reports an invalid simulation configuration. It is fatal at
// engine construction.
var ErrConfig = errors.New("sph: invalid config")

// Config holds the physical parameters of a simulation. All particles
// share the same mass.
type Config struct {
	H            float32 // smoothing radius, > 0
	RestDensity  float32 // rho_0
	Stiffness    float32 // equation-of-state constant k
	Viscosity    float32 // mu
	ParticleMass float32 // m, > 0
	GravityX     float32
	GravityY     float32

	// Workers is the parallel backend's worker count; 0 means
	// GOMAXPROCS. The sequential backend ignores it.
	Workers int
}

func (c Config) validate() error {
	if c.H <= 0 {
		return fmt.Errorf("%w: smoothing radius h = %v, must be > 0", ErrConfig, c.H)
	}
	if c.ParticleMass <= 0 {
		return fmt.Errorf("%w: particle mass m = %v, must be > 0", ErrConfig, c.ParticleMass)
	}
	return nil
}
