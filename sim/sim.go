// Package sim drives the boid simulation: it owns every buffer and runs one of
// three neighbor search strategies per tick.
package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/flock/components"
	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/systems"
	"github.com/pthm-cable/flock/telemetry"
)

// Options holds run-level settings that are not part of the config file.
type Options struct {
	Seed      int64
	Mode      Mode
	LogStats  bool
	OutputDir string // CSV output directory (empty = disabled)
	DumpDir   string // diagnostic dump directory (empty = disabled)
}

// Simulation is the simulation context. It owns the particle store, the index
// tables and the grid; stages borrow slices from it for the duration of one call.
type Simulation struct {
	cfg   *config.Config
	rng   *rand.Rand
	rules systems.Rules
	grid  systems.Grid

	particles  *components.Particles
	arrayIndex []int
	cellKey    []int
	ranges     systems.CellRanges
	update     systems.VelocityUpdate

	pool *workerPool
	mode Mode
	tick int32

	// gridTick is the tick whose index tables are currently held, -1 if none.
	gridTick int32

	// Telemetry
	perf      *telemetry.PerfCollector
	collector *telemetry.Collector
	output    *telemetry.OutputManager
	dumper    *telemetry.Dumper
	logStats  bool
}

// New allocates a simulation for cfg.Population.Count particles and scatters
// them randomly. Any buffer that cannot be sized is reported as an error.
func New(cfg *config.Config, opts Options) (*Simulation, error) {
	rules := rulesFromConfig(cfg)
	grid := systems.NewGrid(rules, cfg.World.Scale)

	if err := checkGridSize(grid, cfg.Grid.MaxCells); err != nil {
		return nil, err
	}

	particles, err := components.NewParticles(cfg.Population.Count, cfg.Population.MaxCount)
	if err != nil {
		return nil, err
	}
	n := particles.Len()

	s := &Simulation{
		cfg:        cfg,
		rng:        rand.New(rand.NewSource(opts.Seed)),
		rules:      rules,
		grid:       grid,
		particles:  particles,
		arrayIndex: make([]int, n),
		cellKey:    make([]int, n),
		ranges:     systems.NewCellRanges(grid.CellCount),
		pool:       newWorkerPool(cfg.Parallel.Workers, cfg.Parallel.Threshold),
		mode:       opts.Mode,
		gridTick:   -1,
		perf:       telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:  telemetry.NewCollector(cfg.Derived.StatsWindowTick, cfg.Physics.DT),
		logStats:   opts.LogStats,
	}
	s.update = systems.VelocityUpdate{
		Rules:    &s.rules,
		Grid:     &s.grid,
		Ranges:   &s.ranges,
		MaxSpeed: cfg.Physics.MaxSpeed,
	}

	Scatter(s.rng, particles.Pos, particles.Vel, cfg.World.Scale, cfg.Population.InitialSpeed)

	if s.output, err = telemetry.NewOutputManager(opts.OutputDir); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.output.WriteConfig(cfg); err != nil {
		s.Close()
		return nil, err
	}
	if s.dumper, err = telemetry.NewDumper(opts.DumpDir); err != nil {
		s.Close()
		return nil, err
	}

	slog.Info("simulation initialized",
		"count", n,
		"mode", s.mode.String(),
		"grid_side", grid.SideCount,
		"cells", grid.CellCount,
		"cell_width", grid.CellWidth,
		"workers", s.pool.numWorkers,
		"seed", opts.Seed,
	)

	return s, nil
}

func rulesFromConfig(cfg *config.Config) systems.Rules {
	return systems.Rules{
		Rule1Distance: cfg.Rules.Rule1Distance,
		Rule2Distance: cfg.Rules.Rule2Distance,
		Rule3Distance: cfg.Rules.Rule3Distance,
		Rule1Scale:    cfg.Rules.Rule1Scale,
		Rule2Scale:    cfg.Rules.Rule2Scale,
		Rule3Scale:    cfg.Rules.Rule3Scale,
	}
}

// checkGridSize rejects grids whose range tables would exceed maxCells (0 = unbounded).
func checkGridSize(g systems.Grid, maxCells int) error {
	if maxCells <= 0 {
		return nil
	}
	// Compare in float64 so side³ cannot overflow int.
	if cells := math.Pow(float64(g.SideCount), 3); cells > float64(maxCells) {
		return fmt.Errorf("allocating cell range tables: %d³ = %.0f cells exceeds grid.max_cells %d",
			g.SideCount, cells, maxCells)
	}
	return nil
}

// Step advances the simulation by one tick using the current mode.
func (s *Simulation) Step() {
	p := s.particles
	n := p.Len()
	if n == 0 {
		return
	}

	s.perf.StartTick()

	if s.mode.usesGrid() {
		s.buildCellIndex(s.mode == ModeCoherent)
	} else {
		s.gridTick = -1
	}

	s.perf.StartPhase(telemetry.PhaseSearch)
	switch s.mode {
	case ModeNaive:
		s.pool.run(n, func(i0, i1 int) {
			s.update.BruteForce(p.Pos, p.Vel, p.VelNext, i0, i1)
		})
	case ModeScattered:
		s.pool.run(n, func(i0, i1 int) {
			s.update.Scattered(s.arrayIndex, p.Pos, p.Vel, p.VelNext, i0, i1)
		})
	case ModeCoherent:
		s.pool.run(n, func(i0, i1 int) {
			s.update.Coherent(p.Pos, p.Vel, p.VelNext, i0, i1)
		})
	}

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	dt, scale := s.cfg.Physics.DT, s.cfg.World.Scale
	s.pool.run(n, func(i0, i1 int) {
		systems.UpdatePositions(p.Pos, p.VelNext, dt, scale, i0, i1)
	})
	p.SwapVelocities()
	s.tick++

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.collector.RecordMode(s.mode.String())
	s.flushTelemetry()
	s.dumpDiagnostics()

	s.perf.EndTick()
}

// buildCellIndex rebuilds the sorted index pairs and the cell range table.
// When reorder is set, positions and velocities are also gathered into cell order.
func (s *Simulation) buildCellIndex(reorder bool) {
	p := s.particles
	n := p.Len()

	s.perf.StartPhase(telemetry.PhaseIndex)
	s.pool.run(n, func(i0, i1 int) {
		systems.ComputeIndices(&s.grid, p.Pos, s.arrayIndex, s.cellKey, i0, i1)
	})
	s.pool.run(s.grid.CellCount, func(i0, i1 int) {
		systems.ResetRanges(&s.ranges, i0, i1)
	})

	s.perf.StartPhase(telemetry.PhaseSort)
	systems.SortByKey(s.cellKey, s.arrayIndex)

	if reorder {
		s.perf.StartPhase(telemetry.PhaseReorder)
		s.pool.run(n, func(i0, i1 int) {
			systems.Gather(p.PosSpare, p.Pos, s.arrayIndex, i0, i1)
			systems.Gather(p.VelSpare, p.Vel, s.arrayIndex, i0, i1)
		})
		p.SwapReordered()
	}

	s.perf.StartPhase(telemetry.PhaseRanges)
	s.pool.run(n, func(i0, i1 int) {
		systems.IdentifyCellRanges(s.cellKey, &s.ranges, i0, i1)
	})

	s.gridTick = s.tick
}

// SetMode switches the stepping strategy from the next tick on.
func (s *Simulation) SetMode(m Mode) {
	if m == s.mode {
		return
	}
	slog.Info("mode changed", "tick", s.tick, "from", s.mode.String(), "to", m.String())
	s.mode = m
}

// Mode returns the current stepping strategy.
func (s *Simulation) Mode() Mode {
	return s.mode
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int32 {
	return s.tick
}

// Count returns the number of particles.
func (s *Simulation) Count() int {
	return s.particles.Len()
}

// Grid returns the grid geometry.
func (s *Simulation) Grid() systems.Grid {
	return s.grid
}

// Positions returns the current positions. The slice is owned by the
// simulation, must not be modified, and is only valid until the next Step.
func (s *Simulation) Positions() []r3.Vec {
	return s.particles.Pos
}

// Velocities returns the velocities produced by the last tick. Same ownership
// rules as Positions.
func (s *Simulation) Velocities() []r3.Vec {
	return s.particles.Vel
}

// IndexPairs returns the sorted (arrayIndex, cellKey) tables of the last grid
// tick and false if the last tick did not build them.
func (s *Simulation) IndexPairs() (arrayIndex, cellKey []int, ok bool) {
	if s.gridTick < 0 {
		return nil, nil, false
	}
	return s.arrayIndex, s.cellKey, true
}

// CellRanges returns the range table of the last grid tick and false if the
// last tick did not build it.
func (s *Simulation) CellRanges() (start, end []int, ok bool) {
	if s.gridTick < 0 {
		return nil, nil, false
	}
	return s.ranges.Start, s.ranges.End, true
}

// Close stops the workers, closes output files and releases the buffers.
func (s *Simulation) Close() error {
	s.pool.stop()
	err := s.output.Close()
	s.particles.Release()
	return err
}
