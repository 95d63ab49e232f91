package telemetry

import (
	"testing"
	"time"
)

func TestPhaseString(t *testing.T) {
	tests := []struct {
		ph   Phase
		want string
	}{
		{PhaseIndex, "index"},
		{PhaseReorder, "reorder"},
		{PhaseTelemetry, "telemetry"},
		{Phase(42), "Phase(42)"},
	}
	for _, tt := range tests {
		if got := tt.ph.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", uint8(tt.ph), got, tt.want)
		}
	}
}

func TestPerfCollectorTracksStartedPhases(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseIndex)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseSearch)
		time.Sleep(200 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.Samples != 5 {
		t.Errorf("samples = %d, want 5", stats.Samples)
	}
	if stats.AvgTick <= 0 {
		t.Error("expected positive average tick duration")
	}
	if stats.PhaseAvg[PhaseIndex] <= 0 || stats.PhaseAvg[PhaseSearch] <= 0 {
		t.Errorf("started phases not tracked: %v", stats.PhaseAvg)
	}
	if stats.PhaseAvg[PhaseReorder] != 0 {
		t.Errorf("reorder never started but averaged %v", stats.PhaseAvg[PhaseReorder])
	}
	if stats.PhaseAvg[PhaseSearch] <= stats.PhaseAvg[PhaseIndex] {
		t.Errorf("search (%v) should outlast index (%v)", stats.PhaseAvg[PhaseSearch], stats.PhaseAvg[PhaseIndex])
	}
}

func TestPerfCollectorRepeatedPhaseAccumulates(t *testing.T) {
	pc := NewPerfCollector(1)

	pc.StartTick()
	pc.StartPhase(PhaseSearch)
	time.Sleep(100 * time.Microsecond)
	pc.StartPhase(PhaseIntegrate)
	pc.StartPhase(PhaseSearch)
	time.Sleep(100 * time.Microsecond)
	pc.EndTick()

	if got := pc.Stats().PhaseAvg[PhaseSearch]; got < 200*time.Microsecond {
		t.Errorf("search = %v, want both openings summed (>= 200µs)", got)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSort)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.Samples != 5 {
		t.Errorf("samples = %d, want window size 5", stats.Samples)
	}
	if stats.TicksPerSecond <= 0 {
		t.Error("expected positive ticks per second")
	}
	if !(stats.MinTick <= stats.P50Tick && stats.P50Tick <= stats.P95Tick && stats.P95Tick <= stats.MaxTick) {
		t.Errorf("quantiles out of order: min %v p50 %v p95 %v max %v",
			stats.MinTick, stats.P50Tick, stats.P95Tick, stats.MaxTick)
	}
}

func TestPerfCollectorPhaseSharesBounded(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseSort)
		time.Sleep(10 * time.Microsecond)
		pc.StartPhase(PhaseSearch)
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.PhasePct[PhaseSearch] <= stats.PhasePct[PhaseSort] {
		t.Errorf("expected search (%v%%) > sort (%v%%)", stats.PhasePct[PhaseSearch], stats.PhasePct[PhaseSort])
	}
	var sum float64
	for _, pct := range stats.PhasePct {
		sum += pct
	}
	if sum > 100.0001 {
		t.Errorf("phase shares sum to %v%%", sum)
	}
}

func TestPerfCollectorEmptyStats(t *testing.T) {
	if stats := NewPerfCollector(10).Stats(); stats != (PerfStats{}) {
		t.Errorf("empty stats = %+v, want zero", stats)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var stats PerfStats
	stats.Samples = 60
	stats.AvgTick = 2 * time.Millisecond
	stats.P95Tick = 3 * time.Millisecond
	stats.PhasePct[PhaseSearch] = 70
	stats.PhasePct[PhaseSort] = 10

	row := stats.ToCSV(120, "coherent")

	if row.WindowEnd != 120 || row.Mode != "coherent" || row.Samples != 60 {
		t.Errorf("row header = (%d, %q, %d)", row.WindowEnd, row.Mode, row.Samples)
	}
	if row.AvgTickUS != 2000 || row.P95TickUS != 3000 {
		t.Errorf("tick us = avg %d p95 %d", row.AvgTickUS, row.P95TickUS)
	}
	if row.SearchPct != 70 || row.SortPct != 10 || row.ReorderPct != 0 {
		t.Errorf("phase pcts = search %v sort %v reorder %v", row.SearchPct, row.SortPct, row.ReorderPct)
	}
}
