// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Population PopulationConfig `yaml:"population"`
	World      WorldConfig      `yaml:"world"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Rules      RulesConfig      `yaml:"rules"`
	Grid       GridConfig       `yaml:"grid"`
	Parallel   ParallelConfig   `yaml:"parallel"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PopulationConfig holds particle count and initial placement parameters.
type PopulationConfig struct {
	Count        int     `yaml:"count"`
	MaxCount     int     `yaml:"max_count"`     // Upper bound accepted at allocation time
	InitialSpeed float64 `yaml:"initial_speed"` // Max magnitude of random initial velocity (0 = at rest)
}

// WorldConfig holds the simulation domain. The domain is the cube [-scale, scale]³.
type WorldConfig struct {
	Scale float64 `yaml:"scale"`
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT       float64 `yaml:"dt"`
	MaxSpeed float64 `yaml:"max_speed"`
	Mode     string  `yaml:"mode"` // naive, scattered or coherent
}

// RulesConfig holds the three flocking rule thresholds and weights.
type RulesConfig struct {
	Rule1Distance float64 `yaml:"rule1_distance"` // cohesion
	Rule2Distance float64 `yaml:"rule2_distance"` // separation
	Rule3Distance float64 `yaml:"rule3_distance"` // alignment
	Rule1Scale    float64 `yaml:"rule1_scale"`
	Rule2Scale    float64 `yaml:"rule2_scale"`
	Rule3Scale    float64 `yaml:"rule3_scale"`
}

// GridConfig holds uniform grid limits.
type GridConfig struct {
	MaxCells int `yaml:"max_cells"`
}

// ParallelConfig holds worker pool parameters.
type ParallelConfig struct {
	Workers   int `yaml:"workers"`   // 0 = GOMAXPROCS
	Threshold int `yaml:"threshold"` // Below this element count kernels run inline
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Simulation seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Ticks averaged by the perf collector
	DumpInterval        int     `yaml:"dump_interval"`         // Ticks between diagnostic dumps (0 = off)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	MaxRuleDistance float64 // max(rule1, rule2, rule3) distance
	CellWidth       float64 // 2 * MaxRuleDistance
	StatsWindowTick int32   // Telemetry.StatsWindow in ticks (>= 1)
}

// Mode names accepted by physics.mode.
var modeNames = []string{"naive", "scattered", "coherent"}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate rejects configurations the grid and integrator cannot run with.
func (c *Config) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", name, v))
		}
	}

	if c.Population.Count < 1 {
		errs = append(errs, fmt.Errorf("population.count must be at least 1, got %d", c.Population.Count))
	}
	if c.Population.MaxCount > 0 && c.Population.Count > c.Population.MaxCount {
		errs = append(errs, fmt.Errorf("population.count %d exceeds population.max_count %d",
			c.Population.Count, c.Population.MaxCount))
	}
	if c.Population.InitialSpeed < 0 {
		errs = append(errs, fmt.Errorf("population.initial_speed must not be negative, got %v", c.Population.InitialSpeed))
	}
	positive("world.scale", c.World.Scale)
	positive("physics.dt", c.Physics.DT)
	positive("physics.max_speed", c.Physics.MaxSpeed)
	positive("rules.rule1_distance", c.Rules.Rule1Distance)
	positive("rules.rule2_distance", c.Rules.Rule2Distance)
	positive("rules.rule3_distance", c.Rules.Rule3Distance)

	if !ValidMode(c.Physics.Mode) {
		errs = append(errs, fmt.Errorf("physics.mode %q is not one of %s",
			c.Physics.Mode, strings.Join(modeNames, ", ")))
	}
	if c.Parallel.Workers < 0 {
		errs = append(errs, fmt.Errorf("parallel.workers must not be negative, got %d", c.Parallel.Workers))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// ValidMode reports whether name is a known stepping mode.
func ValidMode(name string) bool {
	for _, m := range modeNames {
		if m == name {
			return true
		}
	}
	return false
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating fields in place.
func (c *Config) ComputeDerived() {
	c.Derived.MaxRuleDistance = max(c.Rules.Rule1Distance, c.Rules.Rule2Distance, c.Rules.Rule3Distance)
	c.Derived.CellWidth = 2 * c.Derived.MaxRuleDistance

	ticks := int32(1)
	if c.Physics.DT > 0 {
		ticks = int32(math.Round(c.Telemetry.StatsWindow / c.Physics.DT))
	}
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.StatsWindowTick = ticks
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
