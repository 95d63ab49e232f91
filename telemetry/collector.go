package telemetry

import "gonum.org/v1/gonum/spatial/r3"

// Collector tracks stats windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32
	lastMode        string
	modeSwitches    int
}

// NewCollector creates a new stats collector.
// windowTicks: ticks per stats window (clamped to >= 1)
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowTicks int32, dt float64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: windowTicks,
		dt:                  dt,
	}
}

// RecordMode notes the stepping mode used for a tick.
func (c *Collector) RecordMode(mode string) {
	if c.lastMode != "" && c.lastMode != mode {
		c.modeSwitches++
	}
	c.lastMode = mode
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// start and end are the cell range tables of the last grid step, or nil.
func (c *Collector) Flush(currentTick int32, vel []r3.Vec, start, end []int) WindowStats {
	speed := ComputeSpeedStats(vel)
	occupied, occMean, occMax := CellOccupancy(start, end)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Mode:            c.lastMode,
		Count:           len(vel),

		SpeedMean: speed.Mean,
		SpeedStd:  speed.Std,
		SpeedP10:  speed.P10,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,
		SpeedMax:  speed.Max,

		Polarization: Polarization(vel),

		OccupiedCells:     occupied,
		CellOccupancyMean: occMean,
		CellOccupancyMax:  occMax,

		ModeSwitches: c.modeSwitches,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.modeSwitches = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
