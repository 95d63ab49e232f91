package sim

import (
	"log/slog"

	"github.com/pthm-cable/flock/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and writes it out.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	start, end, _ := s.CellRanges()
	stats := s.collector.Flush(s.tick, s.particles.Vel, start, end)
	perfStats := s.perf.Stats()

	// Log stats if enabled (console output)
	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	// Write to CSV if output manager is enabled
	if s.output != nil {
		if err := s.output.WriteStats(stats); err != nil {
			slog.Error("failed to write flock stats", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick, s.mode.String()); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// dumpDiagnostics writes the index tables and particle buffers every
// telemetry.dump_interval ticks.
func (s *Simulation) dumpDiagnostics() {
	interval := int32(s.cfg.Telemetry.DumpInterval)
	if s.dumper == nil || interval <= 0 || s.tick%interval != 0 {
		return
	}

	if arrayIndex, cellKey, ok := s.IndexPairs(); ok {
		if _, err := s.dumper.DumpIndexPairs(s.tick, arrayIndex, cellKey); err != nil {
			slog.Error("failed to dump index pairs", "tick", s.tick, "error", err)
		}
		start, end, _ := s.CellRanges()
		if _, err := s.dumper.DumpCellRanges(s.tick, start, end); err != nil {
			slog.Error("failed to dump cell ranges", "tick", s.tick, "error", err)
		}
	}

	path, err := s.dumper.DumpParticles(s.tick, s.particles.Pos, s.particles.Vel)
	if err != nil {
		slog.Error("failed to dump particles", "tick", s.tick, "error", err)
		return
	}
	slog.Debug("diagnostics dumped", "tick", s.tick, "particles", path)
}

// Stats returns the current performance window without flushing it.
func (s *Simulation) Stats() telemetry.PerfStats {
	return s.perf.Stats()
}
