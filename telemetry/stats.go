package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"github.com/ArminGEtemad/sph2d/sph"
)

// WindowStats holds aggregated fluid statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	Particles int `csv:"particles"`

	// Density distribution (sampled at window end)
	RhoMean float64 `csv:"rho_mean"`
	RhoP10  float64 `csv:"rho_p10"`
	RhoP50  float64 `csv:"rho_p50"`
	RhoP90  float64 `csv:"rho_p90"`

	// Pressure
	PressureMean float64 `csv:"p_mean"`
	PressureMax  float64 `csv:"p_max"`

	// Kinematics
	MaxSpeed float64 `csv:"max_speed"`
	MeanY    float64 `csv:"mean_y"` // settling indicator: drops as the block falls
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFieldStats calculates mean and percentiles from sampled field
// values.
func ComputeFieldStats(values []float64) (mean, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / float64(n)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// CollectWindowStats samples the particle state into a WindowStats
// record. The snapshot is whatever the engine returned for this tick;
// rho and p are the values of the most recent density pass.
func CollectWindowStats(snap []sph.Particle, startTick, endTick int32, dt float64) WindowStats {
	ws := WindowStats{
		WindowStartTick: startTick,
		WindowEndTick:   endTick,
		SimTimeSec:      float64(endTick) * dt,
		Particles:       len(snap),
	}
	if len(snap) == 0 {
		return ws
	}

	rhos := make([]float64, len(snap))
	var pSum, pMax, ySum, maxSpeed2 float64
	for i, p := range snap {
		rhos[i] = float64(p.Rho)

		pv := float64(p.P)
		pSum += pv
		if pv > pMax {
			pMax = pv
		}

		ySum += float64(p.Pos.Y)

		s2 := float64(p.Vel.X)*float64(p.Vel.X) + float64(p.Vel.Y)*float64(p.Vel.Y)
		if s2 > maxSpeed2 {
			maxSpeed2 = s2
		}
	}

	ws.RhoMean, ws.RhoP10, ws.RhoP50, ws.RhoP90 = ComputeFieldStats(rhos)
	ws.PressureMean = pSum / float64(len(snap))
	ws.PressureMax = pMax
	ws.MaxSpeed = math.Sqrt(maxSpeed2)
	ws.MeanY = ySum / float64(len(snap))

	return ws
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Float64("rho_mean", s.RhoMean),
		slog.Float64("rho_p10", s.RhoP10),
		slog.Float64("rho_p50", s.RhoP50),
		slog.Float64("rho_p90", s.RhoP90),
		slog.Float64("p_mean", s.PressureMean),
		slog.Float64("p_max", s.PressureMax),
		slog.Float64("max_speed", s.MaxSpeed),
		slog.Float64("mean_y", s.MeanY),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"particles", s.Particles,
		"rho_mean", s.RhoMean,
		"rho_p10", s.RhoP10,
		"rho_p50", s.RhoP50,
		"rho_p90", s.RhoP90,
		"p_mean", s.PressureMean,
		"p_max", s.PressureMax,
		"max_speed", s.MaxSpeed,
		"mean_y", s.MeanY,
	)
}
