package telemetry

import (
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Phase identifies one stage of a simulation tick.
type Phase uint8

const (
	PhaseIndex Phase = iota
	PhaseSort
	PhaseRanges
	PhaseReorder
	PhaseSearch
	PhaseIntegrate
	PhaseTelemetry
	numPhases
)

// noPhase marks a collector with no phase open.
const noPhase = numPhases

var phaseNames = [numPhases]string{
	PhaseIndex:     "index",
	PhaseSort:      "sort",
	PhaseRanges:    "ranges",
	PhaseReorder:   "reorder",
	PhaseSearch:    "search",
	PhaseIntegrate: "integrate",
	PhaseTelemetry: "telemetry",
}

func (p Phase) String() string {
	if p < numPhases {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", p)
}

// PhaseTimes holds one duration per phase, in pipeline order.
type PhaseTimes [numPhases]time.Duration

// PerfCollector times ticks and their phases over a rolling window of the
// last windowSize ticks. Recording a tick does not allocate.
type PerfCollector struct {
	ticks  []time.Duration
	phases []PhaseTimes
	next   int
	count  int

	current    PhaseTimes
	active     Phase
	tickStart  time.Time
	phaseStart time.Time
}

// NewPerfCollector creates a collector averaging over windowSize ticks (default 60).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		ticks:  make([]time.Duration, windowSize),
		phases: make([]PhaseTimes, windowSize),
		active: noPhase,
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	now := time.Now()
	p.tickStart = now
	p.phaseStart = now
	p.current = PhaseTimes{}
	p.active = noPhase
}

// StartPhase closes the open phase, if any, and opens ph.
// A phase opened twice in one tick accumulates.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.active = ph
	p.phaseStart = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.active < numPhases {
		p.current[p.active] += now.Sub(p.phaseStart)
	}
}

// EndTick closes the open phase and records the tick in the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.closePhase(now)
	p.active = noPhase

	p.ticks[p.next] = now.Sub(p.tickStart)
	p.phases[p.next] = p.current
	p.next = (p.next + 1) % len(p.ticks)
	if p.count < len(p.ticks) {
		p.count++
	}
}

// PerfStats summarizes the ticks in a collector window.
type PerfStats struct {
	Samples int

	AvgTick time.Duration
	MinTick time.Duration
	P50Tick time.Duration
	P95Tick time.Duration
	MaxTick time.Duration

	PhaseAvg PhaseTimes
	PhasePct [numPhases]float64 // share of the average tick

	TicksPerSecond float64
}

// Stats aggregates the current window. An empty window yields zero stats.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	if p.count == 0 {
		return s
	}
	s.Samples = p.count

	durations := make([]float64, p.count)
	var total time.Duration
	var phaseSum PhaseTimes
	for i := 0; i < p.count; i++ {
		durations[i] = float64(p.ticks[i])
		total += p.ticks[i]
		for ph, d := range p.phases[i] {
			phaseSum[ph] += d
		}
	}
	sort.Float64s(durations)

	n := time.Duration(p.count)
	s.AvgTick = total / n
	s.MinTick = time.Duration(durations[0])
	s.P50Tick = time.Duration(Percentile(durations, 0.50))
	s.P95Tick = time.Duration(Percentile(durations, 0.95))
	s.MaxTick = time.Duration(durations[len(durations)-1])

	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgTick > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTick) * 100
		}
	}
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	return s
}

// LogValue implements slog.LogValuer. Phases that never ran are omitted.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("samples", s.Samples),
		slog.Int64("avg_tick_us", s.AvgTick.Microseconds()),
		slog.Int64("p50_tick_us", s.P50Tick.Microseconds()),
		slog.Int64("p95_tick_us", s.P95Tick.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTick.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		if s.PhaseAvg[ph] > 0 {
			attrs = append(attrs, slog.Float64(ph.String()+"_pct", s.PhasePct[ph]))
		}
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the window using slog.
func (s PerfStats) LogStats() {
	slog.Info("perf", "window", s)
}

// PerfStatsCSV is a flat row of perf.csv.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	Mode         string  `csv:"mode"`
	Samples      int     `csv:"samples"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	P50TickUS    int64   `csv:"p50_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	IndexPct     float64 `csv:"index_pct"`
	SortPct      float64 `csv:"sort_pct"`
	RangesPct    float64 `csv:"ranges_pct"`
	ReorderPct   float64 `csv:"reorder_pct"`
	SearchPct    float64 `csv:"search_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats into a perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32, mode string) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		Mode:         mode,
		Samples:      s.Samples,
		AvgTickUS:    s.AvgTick.Microseconds(),
		MinTickUS:    s.MinTick.Microseconds(),
		P50TickUS:    s.P50Tick.Microseconds(),
		P95TickUS:    s.P95Tick.Microseconds(),
		MaxTickUS:    s.MaxTick.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		IndexPct:     s.PhasePct[PhaseIndex],
		SortPct:      s.PhasePct[PhaseSort],
		RangesPct:    s.PhasePct[PhaseRanges],
		ReorderPct:   s.PhasePct[PhaseReorder],
		SearchPct:    s.PhasePct[PhaseSearch],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
