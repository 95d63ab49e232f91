package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	count := flag.Int("count", 0, "Number of particles (0 = use config)")
	modeName := flag.String("mode", "", "Neighbor search mode: naive, scattered or coherent (empty = use config)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dumpDir := flag.String("dump-dir", "", "Directory for index table and particle dumps")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
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

	// CLI overrides
	if *count > 0 {
		cfg.Population.Count = *count
	}
	if *modeName != "" {
		cfg.Physics.Mode = *modeName
	}
	if *statsWindow > 0 {
		cfg.Telemetry.StatsWindow = *statsWindow
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid flags", "error", err)
		os.Exit(1)
	}
	cfg.ComputeDerived()

	mode, err := sim.ParseMode(cfg.Physics.Mode)
	if err != nil {
		slog.Error("invalid mode", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	s, err := sim.New(cfg, sim.Options{
		Seed:      rngSeed,
		Mode:      mode,
		LogStats:  *logStats,
		OutputDir: *outputDir,
		DumpDir:   *dumpDir,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("failed to close simulation", "error", err)
		}
	}()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"mode", mode.String(),
		"max_ticks", *maxTicks,
	)

	start := time.Now()
	for {
		s.Step()

		if *maxTicks > 0 && int(s.Tick()) >= *maxTicks {
			elapsed := time.Since(start)
			slog.Info("max ticks reached",
				"tick", s.Tick(),
				"elapsed", elapsed.String(),
				"ticks_per_sec", float64(s.Tick())/elapsed.Seconds(),
			)
			return
		}
	}
}
