package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/ArminGEtemad/sph2d/config"
	"github.com/ArminGEtemad/sph2d/sph"
	"github.com/ArminGEtemad/sph2d/telemetry"
	"github.com/ArminGEtemad/sph2d/viewer"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	backend := flag.String("backend", "parallel", "Engine backend: serial or parallel")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotPath := flag.String("snapshot", "", "Write a state snapshot here when the run ends")
	restorePath := flag.String("restore", "", "Restore particle state from a snapshot instead of seeding")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	engine, err := newEngine(cfg, *backend)
	if err != nil {
		slog.Error("failed to build engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	if *restorePath != "" {
		if err := restoreState(engine, *restorePath); err != nil {
			slog.Error("failed to restore snapshot", "error", err)
			os.Exit(1)
		}
	} else {
		engine.SeedLattice(cfg.Lattice.NX, cfg.Lattice.NY, float32(cfg.Lattice.Spacing))
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to set up output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
		os.Exit(1)
	}

	var tick int32
	if *headless {
		slog.Info("starting headless simulation",
			"backend", *backend,
			"particles", engine.Len(),
			"max_ticks", *maxTicks,
		)
		tick = runHeadless(cfg, engine, output, *logStats, *maxTicks)
	} else {
		tick = runGraphical(cfg, engine, *maxTicks)
	}

	if *snapshotPath != "" {
		snap := telemetry.CaptureSnapshot(engine.Snapshot(), tick,
			float32(cfg.Sim.H), float32(cfg.Sim.RestDensity))
		if err := snap.Save(*snapshotPath); err != nil {
			slog.Error("failed to save snapshot", "error", err)
			os.Exit(1)
		}
		slog.Info("snapshot saved", "path", *snapshotPath, "tick", tick)
	}
}

// newEngine builds the requested backend from the loaded config.
func newEngine(cfg *config.Config, backend string) (sph.Engine, error) {
	switch backend {
	case "serial":
		return sph.NewSerial(cfg.Derived.SimCfg)
	case "parallel":
		return sph.NewParallel(cfg.Derived.SimCfg)
	default:
		return nil, fmt.Errorf("unknown backend %q (want serial or parallel)", backend)
	}
}

// restoreState loads a saved snapshot into the engine.
func restoreState(engine sph.Engine, path string) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	setter, ok := engine.(interface{ SetParticles([]sph.Particle) })
	if !ok {
		return fmt.Errorf("backend does not support state restore")
	}
	setter.SetParticles(snap.Restore())
	slog.Info("snapshot restored", "path", path, "tick", snap.Tick, "particles", len(snap.Particles))
	return nil
}

// runHeadless steps the simulation flat out, emitting telemetry windows
// as it goes. Returns the final tick.
func runHeadless(cfg *config.Config, engine sph.Engine, output *telemetry.OutputManager, logStats bool, maxTicks int) int32 {
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)

	dt := cfg.Derived.DT32
	xMax := float32(cfg.Bounds.XMax)
	xMin := float32(cfg.Bounds.XMin)
	rest := float32(cfg.Bounds.Restitution)
	logEvery := int32(cfg.Telemetry.LogEvery)

	var tick, windowStart int32
	for {
		engine.Step(dt, xMax, xMin, rest)
		tick++
		perf.RecordTick(engine.StageTimes())

		if logEvery > 0 && tick%logEvery == 0 {
			stats := telemetry.CollectWindowStats(engine.Snapshot(), windowStart, tick, cfg.Sim.DT)
			windowStart = tick

			if logStats {
				stats.LogStats()
				perf.Stats().LogStats()
			}
			if err := output.WriteWindowStats(stats); err != nil {
				slog.Error("failed to write window stats", "error", err)
			}
			if err := output.WritePerf(perf.Stats(), tick); err != nil {
				slog.Error("failed to write perf stats", "error", err)
			}
		}

		if maxTicks > 0 && int(tick) >= maxTicks {
			slog.Info("max ticks reached", "tick", tick)
			return tick
		}
	}
}

// runGraphical opens the raylib window and drives the interactive
// viewer. Returns the final tick.
func runGraphical(cfg *config.Config, engine sph.Engine, maxTicks int) int32 {
	rl.InitWindow(int32(cfg.Viewer.Width), int32(cfg.Viewer.Height), "SPH 2D")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Viewer.TargetFPS))

	v := viewer.New(cfg, engine)

	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if maxTicks > 0 && int(v.Tick()) >= maxTicks {
			break
		}
	}
	return v.Tick()
}
