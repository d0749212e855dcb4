package viewer

import rl "github.com/gen2brain/raylib-go/raylib"

// rampStops is the density color ramp: blue at rest density through
// cyan and yellow to red where the fluid is most compressed.
var rampStops = [4]rl.Color{
	{R: 30, G: 90, B: 220, A: 255},
	{R: 40, G: 200, B: 220, A: 255},
	{R: 240, G: 220, B: 60, A: 255},
	{R: 230, G: 60, B: 40, A: 255},
}

// DensityColor maps a normalized density t in [0, 1] onto the ramp.
func DensityColor(t float32) rl.Color {
	if t <= 0 {
		return rampStops[0]
	}
	if t >= 1 {
		return rampStops[3]
	}

	scaled := t * 3
	seg := int(scaled)
	frac := scaled - float32(seg)

	a := rampStops[seg]
	b := rampStops[seg+1]
	return rl.Color{
		R: lerpU8(a.R, b.R, frac),
		G: lerpU8(a.G, b.G, frac),
		B: lerpU8(a.B, b.B, frac),
		A: 255,
	}
}

// SpeedColor maps a normalized speed t in [0, 1] from dark blue to
// white.
func SpeedColor(t float32) rl.Color {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return rl.Color{
		R: lerpU8(40, 255, t),
		G: lerpU8(70, 255, t),
		B: lerpU8(180, 255, t),
		A: 255,
	}
}

func lerpU8(a, b uint8, t float32) uint8 {
	return uint8(float32(a) + (float32(b)-float32(a))*t)
}
