// Package viewer renders the simulation interactively with raylib. One
// ECS entity mirrors each particle; the draw pass walks the entities
// and reads the engine snapshot they index into.
package viewer

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/ArminGEtemad/sph2d/camera"
	"github.com/ArminGEtemad/sph2d/config"
	"github.com/ArminGEtemad/sph2d/sph"
	"github.com/ArminGEtemad/sph2d/telemetry"
)

// ColorMode selects what the particle tint encodes.
type ColorMode uint8

const (
	ColorByDensity ColorMode = iota
	ColorBySpeed
)

// Sprite ties an ECS entity to the particle index it renders.
type Sprite struct {
	Index int32
}

// Impulser is the optional engine capability behind mouse dragging.
// Both engines provide it through their shared core.
type Impulser interface {
	ApplyImpulse(x, y, radius, ix, iy float32)
}

// Viewer owns the window-facing state of a run.
type Viewer struct {
	cfg    *config.Config
	engine sph.Engine
	perf   *telemetry.PerfCollector
	cam    *camera.Camera

	world     *ecs.World
	sprites   *ecs.Map1[Sprite]
	filter    *ecs.Filter1[Sprite]
	spawned   int
	snapshot  []sph.Particle
	colorMode ColorMode

	paused bool
	dt     float32
	tick   int32

	lastMouse rl.Vector2
}

// New builds a viewer around an already-seeded engine.
func New(cfg *config.Config, engine sph.Engine) *Viewer {
	world := ecs.NewWorld()

	// Start centered between the walls with the floor near the bottom
	// edge of the window.
	scale := float32(cfg.Viewer.RenderScale)
	cx := float32(cfg.Bounds.XMin+cfg.Bounds.XMax) / 2
	cy := float32(cfg.Viewer.Height) / (2 * scale)

	v := &Viewer{
		cfg:     cfg,
		engine:  engine,
		perf:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		cam:     camera.New(float32(cfg.Viewer.Width), float32(cfg.Viewer.Height), cx, cy, scale),
		world:   world,
		sprites: ecs.NewMap1[Sprite](world),
		filter:  ecs.NewFilter1[Sprite](world),
		dt:      cfg.Derived.DT32,
	}
	v.syncEntities()
	return v
}

// syncEntities spawns one sprite entity per particle. The particle
// count is fixed after seeding, so this runs once in practice.
func (v *Viewer) syncEntities() {
	for v.spawned < v.engine.Len() {
		v.sprites.NewEntity(&Sprite{Index: int32(v.spawned)})
		v.spawned++
	}
}

// Tick returns the number of simulation steps taken.
func (v *Viewer) Tick() int32 {
	return v.tick
}

// Update advances the simulation (unless paused) and processes input.
func (v *Viewer) Update() {
	v.handleInput()

	if !v.paused {
		v.engine.Step(v.dt,
			float32(v.cfg.Bounds.XMax),
			float32(v.cfg.Bounds.XMin),
			float32(v.cfg.Bounds.Restitution))
		v.tick++
		v.perf.RecordTick(v.engine.StageTimes())
	}

	v.snapshot = v.engine.Snapshot()
	v.syncEntities()
	v.perf.RecordFrame()
}

func (v *Viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyC) {
		if v.colorMode == ColorByDensity {
			v.colorMode = ColorBySpeed
		} else {
			v.colorMode = ColorByDensity
		}
	}

	v.handleCameraInput()

	// Mouse drag pushes nearby fluid along the drag direction.
	mouse := rl.GetMousePosition()
	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		if imp, ok := v.engine.(Impulser); ok {
			wx, wy := v.cam.ScreenToWorld(mouse.X, mouse.Y)
			scale := float32(v.cfg.Viewer.Impulse)
			dx := (mouse.X - v.lastMouse.X) / v.cam.Zoom
			dy := -(mouse.Y - v.lastMouse.Y) / v.cam.Zoom
			imp.ApplyImpulse(wx, wy, float32(v.cfg.Viewer.InteractionRadius), dx*scale, dy*scale)
		}
	}
	v.lastMouse = mouse
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	// Pan takes pixels, so the speed already scales with zoom.
	panSpeed := float32(8.0)

	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed)
	}

	if wheelMove := rl.GetMouseWheelMove(); wheelMove != 0 {
		v.cam.ZoomBy(1 + wheelMove*0.1)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}

	if rl.IsWindowResized() {
		v.cam.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	}
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 18, G: 18, B: 24, A: 255})

	v.drawBounds()
	v.drawParticles()
	v.drawPanel()

	rl.EndDrawing()
}

func (v *Viewer) drawBounds() {
	fx0, fy := v.cam.WorldToScreen(float32(v.cfg.Bounds.XMin), 0)
	fx1, _ := v.cam.WorldToScreen(float32(v.cfg.Bounds.XMax), 0)
	wall := rl.Color{R: 90, G: 90, B: 100, A: 255}
	rl.DrawLine(int32(fx0), int32(fy), int32(fx1), int32(fy), wall)
	rl.DrawLine(int32(fx0), 0, int32(fx0), int32(fy), wall)
	rl.DrawLine(int32(fx1), 0, int32(fx1), int32(fy), wall)
}

func (v *Viewer) drawParticles() {
	radius := float32(v.cfg.Viewer.ParticleRadius)
	rho0 := float32(v.cfg.Sim.RestDensity)
	cullRadius := radius / v.cam.Zoom

	query := v.filter.Query()
	for query.Next() {
		sprite := query.Get()
		p := &v.snapshot[sprite.Index]

		if !v.cam.IsVisible(p.Pos.X, p.Pos.Y, cullRadius) {
			continue
		}

		var color rl.Color
		switch v.colorMode {
		case ColorBySpeed:
			speed2 := p.Vel.X*p.Vel.X + p.Vel.Y*p.Vel.Y
			color = SpeedColor(speed2 / 25)
		default:
			// Normalize 0..2·rho0 onto the ramp, rest density mid-ramp.
			color = DensityColor(p.Rho / (2 * rho0))
		}

		sx, sy := v.cam.WorldToScreen(p.Pos.X, p.Pos.Y)
		rl.DrawCircle(int32(sx), int32(sy), radius, color)
	}
}

func (v *Viewer) drawPanel() {
	const panelX, panelW = 10, 220
	panelY := float32(10)

	stats := v.perf.Stats()
	rl.DrawText("SPH 2D", panelX, int32(panelY), 20, rl.RayWhite)
	panelY += 28
	rl.DrawText(
		"tick "+itoa(int(v.tick))+"  fps "+itoa(int(stats.FPS)),
		panelX, int32(panelY), 16, rl.Gray)
	panelY += 26

	label := "Pause"
	if v.paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 100, Height: 26}, label) {
		v.paused = !v.paused
	}
	panelY += 34

	rl.DrawText("dt (ms)", panelX, int32(panelY), 14, rl.Gray)
	panelY += 16
	newDT := gui.SliderBar(
		rl.Rectangle{X: panelX, Y: panelY, Width: panelW - 60, Height: 20},
		"0.1", "2.0",
		v.dt*1000, 0.1, 2.0,
	)
	v.dt = newDT / 1000
}

// itoa avoids pulling fmt into the per-frame path.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [12]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
