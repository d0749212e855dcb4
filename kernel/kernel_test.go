package kernel

import (
	"math"
	"testing"
)

func TestPoly6Support(t *testing.T) {
	k := New(0.045)

	tests := []struct {
		name string
		r2   float32
		zero bool
	}{
		{"at origin", 0, false},
		{"inside support", 0.001, false},
		{"at support boundary", k.H2, true}, // (h²−r²)³ = 0
		{"outside support", k.H2 * 1.01, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := k.Poly6(tt.r2)
			if tt.zero && got != 0 {
				t.Errorf("Poly6(%v) = %v, want 0", tt.r2, got)
			}
			if !tt.zero && got <= 0 {
				t.Errorf("Poly6(%v) = %v, want > 0", tt.r2, got)
			}
		})
	}
}

func TestPoly6PeakValue(t *testing.T) {
	h := float32(0.045)
	k := New(h)

	// W(0) = 4/(π h⁸) · h⁶ = 4/(π h²)
	want := 4.0 / (math.Pi * float64(h) * float64(h))
	got := float64(k.Poly6(0))
	if math.Abs(got-want)/want > 1e-5 {
		t.Errorf("Poly6(0) = %v, want %v", got, want)
	}
}

func TestSpikyGradZeroAtOriginAndBoundary(t *testing.T) {
	k := New(0.045)

	// Coincident particles must not produce NaN from normalizing a
	// zero-length offset.
	gx, gy := k.SpikyGrad(0, 0, 0)
	if gx != 0 || gy != 0 {
		t.Errorf("SpikyGrad at r=0 = (%v, %v), want zero vector", gx, gy)
	}

	gx, gy = k.SpikyGrad(k.H, 0, k.H)
	if gx != 0 || gy != 0 {
		t.Errorf("SpikyGrad at r=h = (%v, %v), want zero vector", gx, gy)
	}
}

func TestSpikyGradPointsAlongOffset(t *testing.T) {
	k := New(0.045)

	// Offset purely along +x: gradient must be along x, negative sign
	// from the spiky constant.
	r := float32(0.02)
	gx, gy := k.SpikyGrad(r, 0, r)
	if gy != 0 {
		t.Errorf("gy = %v, want 0", gy)
	}
	if gx >= 0 {
		t.Errorf("gx = %v, want < 0", gx)
	}

	// Magnitude check against the closed form |∇W| = 10/(πh⁵)·(h−r)².
	h := float64(k.H)
	want := 10.0 / (math.Pi * math.Pow(h, 5)) * math.Pow(h-float64(r), 2)
	got := math.Abs(float64(gx))
	if math.Abs(got-want)/want > 1e-4 {
		t.Errorf("|SpikyGrad| = %v, want %v", got, want)
	}
}

func TestViscLap(t *testing.T) {
	h := float32(0.045)
	k := New(h)

	tests := []struct {
		name string
		r    float32
		zero bool
	}{
		{"at origin", 0, true},
		{"inside support", h / 2, false},
		{"at boundary", h, true},
		{"outside support", h * 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := k.ViscLap(tt.r)
			if tt.zero && got != 0 {
				t.Errorf("ViscLap(%v) = %v, want 0", tt.r, got)
			}
			if !tt.zero && got <= 0 {
				t.Errorf("ViscLap(%v) = %v, want > 0", tt.r, got)
			}
		})
	}

	// Closed form at h/2: 40/(πh⁵)·(h/2).
	want := 40.0 / (math.Pi * math.Pow(float64(h), 5)) * float64(h) / 2
	got := float64(k.ViscLap(h / 2))
	if math.Abs(got-want)/want > 1e-4 {
		t.Errorf("ViscLap(h/2) = %v, want %v", got, want)
	}
}
