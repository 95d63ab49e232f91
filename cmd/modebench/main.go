// Package main sweeps particle counts and search modes and reports the tick
// rate of each combination.
package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	countList := flag.String("counts", "1000,10000,100000", "Comma separated particle counts")
	modeList := flag.String("modes", "naive,scattered,coherent", "Comma separated modes")
	naiveMax := flag.Int("naive-max", 20000, "Skip naive mode above this count (0 = never skip)")
	ticks := flag.Int("ticks", 50, "Measured ticks per run")
	warmup := flag.Int("warmup", 5, "Unmeasured ticks before each run")
	seed := flag.Int64("seed", 42, "RNG seed shared by every run")
	outputDir := flag.String("output", "", "Output directory for results.csv (empty = log only)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	counts, err := parseCounts(*countList)
	if err != nil {
		slog.Error("invalid -counts", "error", err)
		os.Exit(1)
	}
	modes, err := parseModes(*modeList)
	if err != nil {
		slog.Error("invalid -modes", "error", err)
		os.Exit(1)
	}

	// Load base config
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	r := &runner{base: config.Cfg(), seed: *seed, warmup: *warmup, ticks: *ticks}
	results := make([]*benchResult, 0, len(counts)*len(modes))
	startTime := time.Now()

	for _, n := range counts {
		for _, m := range modes {
			if m == sim.ModeNaive && *naiveMax > 0 && n > *naiveMax {
				slog.Warn("skipping naive run", "count", n, "naive_max", *naiveMax)
				continue
			}

			res, err := r.run(n, m)
			if err != nil {
				slog.Error("run failed", "count", n, "mode", m.String(), "error", err)
				continue
			}
			results = append(results, &res)

			slog.Warn("run complete",
				"count", n,
				"mode", res.Mode,
				"avg_tick_us", res.AvgTickUS,
				"ticks_per_sec", res.TicksPerSec,
				"search_pct", res.SearchPct,
				"elapsed", formatDuration(time.Since(startTime)),
			)
		}
	}

	if *outputDir == "" {
		return
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	f, err := os.Create(filepath.Join(*outputDir, "results.csv"))
	if err != nil {
		slog.Error("failed to create results file", "error", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&results, f); err != nil {
		slog.Error("failed to write results", "error", err)
		return
	}

	if err := config.Cfg().WriteYAML(filepath.Join(*outputDir, "config.yaml")); err != nil {
		slog.Error("failed to write config", "error", err)
	}
}
