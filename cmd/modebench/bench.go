package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sim"
	"github.com/pthm-cable/flock/telemetry"
)

// benchResult is one row of results.csv.
type benchResult struct {
	Count        int     `csv:"count"`
	Mode         string  `csv:"mode"`
	Ticks        int     `csv:"ticks"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	IndexPct     float64 `csv:"index_pct"`
	SortPct      float64 `csv:"sort_pct"`
	RangesPct    float64 `csv:"ranges_pct"`
	ReorderPct   float64 `csv:"reorder_pct"`
	SearchPct    float64 `csv:"search_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
}

// runner measures one (count, mode) cell of the sweep.
type runner struct {
	base   *config.Config
	seed   int64
	warmup int
	ticks  int
}

// run builds a fresh simulation, discards warmup ticks, and times the rest.
func (r *runner) run(count int, mode sim.Mode) (benchResult, error) {
	cfg := *r.base
	cfg.Population.Count = count
	cfg.Physics.Mode = mode.String()
	// Keep the perf window wide enough to cover every measured tick.
	if cfg.Telemetry.PerfCollectorWindow < r.ticks {
		cfg.Telemetry.PerfCollectorWindow = r.ticks
	}
	if err := cfg.Validate(); err != nil {
		return benchResult{}, err
	}
	cfg.ComputeDerived()

	s, err := sim.New(&cfg, sim.Options{Seed: r.seed, Mode: mode})
	if err != nil {
		return benchResult{}, err
	}
	defer s.Close()

	for i := 0; i < r.warmup; i++ {
		s.Step()
	}

	start := time.Now()
	for i := 0; i < r.ticks; i++ {
		s.Step()
	}
	elapsed := time.Since(start)

	perf := s.Stats()
	res := benchResult{
		Count:        count,
		Mode:         mode.String(),
		Ticks:        r.ticks,
		IndexPct:     perf.PhasePct[telemetry.PhaseIndex],
		SortPct:      perf.PhasePct[telemetry.PhaseSort],
		RangesPct:    perf.PhasePct[telemetry.PhaseRanges],
		ReorderPct:   perf.PhasePct[telemetry.PhaseReorder],
		SearchPct:    perf.PhasePct[telemetry.PhaseSearch],
		IntegratePct: perf.PhasePct[telemetry.PhaseIntegrate],
	}
	if r.ticks > 0 {
		res.AvgTickUS = (elapsed / time.Duration(r.ticks)).Microseconds()
		res.TicksPerSec = float64(r.ticks) / elapsed.Seconds()
	}
	return res, nil
}

// parseCounts parses a comma separated list of positive particle counts.
func parseCounts(s string) ([]int, error) {
	var counts []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("parsing count %q: %w", field, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("count must be positive, got %d", n)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("no counts given")
	}
	return counts, nil
}

// parseModes parses a comma separated list of mode names.
func parseModes(s string) ([]sim.Mode, error) {
	var modes []sim.Mode
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		m, err := sim.ParseMode(field)
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	if len(modes) == 0 {
		return nil, fmt.Errorf("no modes given")
	}
	return modes, nil
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
