// Package telemetry provides perf tracking, run statistics and state
// snapshots for the fluid simulation.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ArminGEtemad/sph2d/sph"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the complete particle state for replay.
type Snapshot struct {
	Version int `json:"version"`

	Tick        int32   `json:"tick"`
	H           float32 `json:"h"`
	RestDensity float32 `json:"rest_density"`

	Particles []ParticleState `json:"particles"`
}

// ParticleState holds one particle's complete state.
type ParticleState struct {
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
	VelX float32 `json:"vel_x"`
	VelY float32 `json:"vel_y"`
	Rho  float32 `json:"rho"`
	P    float32 `json:"p"`
}

// CaptureSnapshot packs an engine snapshot into the serializable form.
func CaptureSnapshot(snap []sph.Particle, tick int32, h, restDensity float32) *Snapshot {
	s := &Snapshot{
		Version:     SnapshotVersion,
		Tick:        tick,
		H:           h,
		RestDensity: restDensity,
		Particles:   make([]ParticleState, len(snap)),
	}
	for i, p := range snap {
		s.Particles[i] = ParticleState{
			X:    p.Pos.X,
			Y:    p.Pos.Y,
			VelX: p.Vel.X,
			VelY: p.Vel.Y,
			Rho:  p.Rho,
			P:    p.P,
		}
	}
	return s
}

// Restore converts the snapshot back into engine particle state.
func (s *Snapshot) Restore() []sph.Particle {
	ps := make([]sph.Particle, len(s.Particles))
	for i, e := range s.Particles {
		ps[i] = sph.Particle{
			Pos: sph.Vec2{X: e.X, Y: e.Y},
			Vel: sph.Vec2{X: e.VelX, Y: e.VelY},
			Rho: e.Rho,
			P:   e.P,
		}
	}
	return ps
}

// Save writes the snapshot as JSON. The .json extension is appended if
// missing.
func (s *Snapshot) Save(path string) error {
	if !strings.HasSuffix(path, ".json") {
		path += ".json"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by Save.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, expected %d", s.Version, SnapshotVersion)
	}
	return &s, nil
}
