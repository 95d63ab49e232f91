// Package telemetry collects flock statistics, timing data and diagnostic dumps.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Mode            string  `csv:"mode"`
	Count           int     `csv:"count"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Order parameter: 1 = every boid heading the same way, ~0 = disordered
	Polarization float64 `csv:"polarization"`

	// Grid occupancy (zero in naive mode, which builds no grid)
	OccupiedCells     int     `csv:"occupied_cells"`
	CellOccupancyMean float64 `csv:"cell_occupancy_mean"`
	CellOccupancyMax  int     `csv:"cell_occupancy_max"`

	ModeSwitches int `csv:"mode_switches"`
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

// SpeedStats holds the speed distribution of a flock.
type SpeedStats struct {
	Mean, Std, P10, P50, P90, Max float64
}

// ComputeSpeedStats calculates mean, population std, percentiles and max of |v|.
func ComputeSpeedStats(vel []r3.Vec) SpeedStats {
	if len(vel) == 0 {
		return SpeedStats{}
	}

	speeds := make([]float64, len(vel))
	for i, v := range vel {
		speeds[i] = r3.Norm(v)
	}

	mean, std := stat.PopMeanStdDev(speeds, nil)
	sort.Float64s(speeds)

	return SpeedStats{
		Mean: mean,
		Std:  std,
		P10:  Percentile(speeds, 0.10),
		P50:  Percentile(speeds, 0.50),
		P90:  Percentile(speeds, 0.90),
		Max:  floats.Max(speeds),
	}
}

// Polarization returns |mean of unit velocities| over moving particles.
// Returns 0 when nothing moves.
func Polarization(vel []r3.Vec) float64 {
	var sum r3.Vec
	moving := 0
	for _, v := range vel {
		if v == (r3.Vec{}) {
			continue
		}
		sum = r3.Add(sum, r3.Unit(v))
		moving++
	}
	if moving == 0 {
		return 0
	}
	return r3.Norm(sum) / float64(moving)
}

// CellOccupancy summarizes a range table: occupied cell count, mean and max
// particles per occupied cell.
func CellOccupancy(start, end []int) (occupied int, mean float64, maxCount int) {
	var counts []float64
	for c, s := range start {
		if s < 0 {
			continue
		}
		counts = append(counts, float64(end[c]-s))
	}
	if len(counts) == 0 {
		return 0, 0, 0
	}
	return len(counts), floats.Sum(counts) / float64(len(counts)), int(floats.Max(counts))
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.String("mode", s.Mode),
		slog.Int("count", s.Count),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("polarization", s.Polarization),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Float64("cell_occupancy_mean", s.CellOccupancyMean),
		slog.Int("cell_occupancy_max", s.CellOccupancyMax),
		slog.Int("mode_switches", s.ModeSwitches),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
