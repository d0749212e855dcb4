package camera

import (
	"math"
	"testing"
)

func TestNew(t *testing.T) {
	cam := New(1280, 720, -1, 3.6, 100)

	if cam.X != -1 || cam.Y != 3.6 {
		t.Errorf("expected camera at (-1, 3.6), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 100 {
		t.Errorf("expected zoom 100, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, -1, 3.6, 100)

	// Camera center should map to screen center
	sx, sy := cam.WorldToScreen(-1, 3.6)
	if math.Abs(float64(sx-640)) > 0.01 || math.Abs(float64(sy-360)) > 0.01 {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestWorldToScreenYFlip(t *testing.T) {
	cam := New(1280, 720, 0, 0, 100)

	// A point above the camera center in world space sits above the
	// screen center, i.e. at a smaller pixel y.
	_, syUp := cam.WorldToScreen(0, 1)
	_, syDown := cam.WorldToScreen(0, -1)
	if syUp >= 360 || syDown <= 360 {
		t.Errorf("y axis not flipped: up=%f down=%f", syUp, syDown)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, -1, 3.6, 100)

	// Test roundtrip at various positions
	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if math.Abs(float64(sx-tc.sx)) > 0.01 || math.Abs(float64(sy-tc.sy)) > 0.01 {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPan(t *testing.T) {
	cam := New(1280, 720, 0, 0, 100)

	// Panning 200px right at 100px/unit moves the center 2 world units.
	cam.Pan(200, 0)
	if math.Abs(float64(cam.X-2)) > 0.001 {
		t.Errorf("expected X = 2, got %f", cam.X)
	}

	// Screen-down pan moves the world center down (y decreases).
	cam.Pan(0, 100)
	if math.Abs(float64(cam.Y+1)) > 0.001 {
		t.Errorf("expected Y = -1, got %f", cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 0, 0, 100)

	cam.SetZoom(1) // below min (100/8)
	if cam.Zoom != 12.5 {
		t.Errorf("expected zoom clamped to 12.5, got %f", cam.Zoom)
	}

	cam.SetZoom(10000) // above max (100*8)
	if cam.Zoom != 800 {
		t.Errorf("expected zoom clamped to 800, got %f", cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 0, 0, 100)

	// Visible world area: 12.8 x 7.2 units around the origin.
	if !cam.IsVisible(0, 0, 0.1) {
		t.Error("center should be visible")
	}

	if cam.IsVisible(20, 0, 0.1) {
		t.Error("far point should not be visible")
	}

	// Point just outside with a large radius should still be visible.
	if !cam.IsVisible(7, 0, 1) {
		t.Error("edge point with large radius should be visible")
	}
}

func TestVisibleWorldBounds(t *testing.T) {
	cam := New(1000, 500, 0, 0, 100)

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if minX != -5 || maxX != 5 || minY != -2.5 || maxY != 2.5 {
		t.Errorf("bounds = (%f,%f)-(%f,%f), want (-5,-2.5)-(5,2.5)", minX, minY, maxX, maxY)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, -1, 3.6, 100)
	cam.X = 5
	cam.Y = 5
	cam.Zoom = 250

	cam.Reset()

	if cam.X != -1 || cam.Y != 3.6 {
		t.Errorf("expected position (-1, 3.6), got (%f, %f)", cam.X, cam.Y)
	}
	if cam.Zoom != 100 {
		t.Errorf("expected zoom 100, got %f", cam.Zoom)
	}
}
