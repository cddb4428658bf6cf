package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/ajroetker/go-prob3/prob3"
	"github.com/ajroetker/go-prob3/prob3/earth"
	"github.com/ajroetker/go-prob3/prob3/hist"
	"github.com/ajroetker/go-prob3/prob3/osc"
	"github.com/ajroetker/go-prob3/prob3/pipeline"
)

// Config represents the complete simulation configuration
type Config struct {
	Run         RunConfig         `mapstructure:"run"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Geometry    GeometryConfig    `mapstructure:"geometry"`
	Earth       EarthConfig       `mapstructure:"earth"`
	Binning     BinningConfig     `mapstructure:"binning"`
	Oscillation OscillationConfig `mapstructure:"oscillation"`
	Events      EventsConfig      `mapstructure:"events"`
	Invariants  InvariantsConfig  `mapstructure:"invariants"`
}

// RunConfig selects the execution target and worker count
type RunConfig struct {
	// Target is "sequential", "parallel", or "" for autodetection
	// (which honors the PROB3_SEQUENTIAL environment variable).
	Target  string `mapstructure:"target"`
	Workers int    `mapstructure:"workers"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// GeometryConfig places detector and production height
type GeometryConfig struct {
	DetectorDepthKm float64 `mapstructure:"detector_depth_km"`
	PropHeightKm    float64 `mapstructure:"prop_height_km"`
}

// ShellConfig is one concentric earth shell
type ShellConfig struct {
	OuterRadiusKm    float64 `mapstructure:"outer_radius_km"`
	DensityGcc       float64 `mapstructure:"density_gcc"`
	ElectronFraction float64 `mapstructure:"electron_fraction"`
}

// EarthConfig holds the ordered shell stack, innermost first
type EarthConfig struct {
	Shells []ShellConfig `mapstructure:"shells"`
}

// AxisConfig describes one analysis axis
type AxisConfig struct {
	Lo   float64 `mapstructure:"lo"`
	Hi   float64 `mapstructure:"hi"`
	Bins int     `mapstructure:"bins"`
	Log  bool    `mapstructure:"log"`
}

// BinningConfig holds the analysis grid
type BinningConfig struct {
	Coszen AxisConfig `mapstructure:"coszen"`
	Energy AxisConfig `mapstructure:"energy"`
}

// OscillationConfig holds the mixing parameters (angles in radians,
// splittings in eV^2)
type OscillationConfig struct {
	Theta12  float64 `mapstructure:"theta12"`
	Theta13  float64 `mapstructure:"theta13"`
	Theta23  float64 `mapstructure:"theta23"`
	DeltaM21 float64 `mapstructure:"deltam21"`
	DeltaM31 float64 `mapstructure:"deltam31"`
	DeltaCP  float64 `mapstructure:"deltacp"`
}

// EventsConfig controls the synthetic event generator
type EventsConfig struct {
	PerFlavor int   `mapstructure:"per_flavor"`
	Seed      int64 `mapstructure:"seed"`
}

// InvariantsConfig controls the probability-unitarity check
type InvariantsConfig struct {
	// Policy is "count" or "abort"
	Policy    string  `mapstructure:"policy"`
	Tolerance float64 `mapstructure:"tolerance"`
}

// Load reads configuration from file and environment variables. An empty
// path runs on defaults alone.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("PROB3")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
// The earth shells default to a coarse four-shell PREM and the oscillation
// parameters to a normal-ordering global-fit point.
func setDefaults(v *viper.Viper) {
	v.SetDefault("run.target", "")
	v.SetDefault("run.workers", 0)

	v.SetDefault("logging.level", "info")

	v.SetDefault("geometry.detector_depth_km", 2.0)
	v.SetDefault("geometry.prop_height_km", 20.0)

	v.SetDefault("earth.shells", []map[string]interface{}{
		{"outer_radius_km": 1220.0, "density_gcc": 13.0, "electron_fraction": 0.4656},
		{"outer_radius_km": 3480.0, "density_gcc": 11.3, "electron_fraction": 0.4656},
		{"outer_radius_km": 5701.0, "density_gcc": 5.0, "electron_fraction": 0.4957},
		{"outer_radius_km": 6371.0, "density_gcc": 3.3, "electron_fraction": 0.4957},
	})

	v.SetDefault("binning.coszen.lo", -1.0)
	v.SetDefault("binning.coszen.hi", 1.0)
	v.SetDefault("binning.coszen.bins", 20)
	v.SetDefault("binning.coszen.log", false)
	v.SetDefault("binning.energy.lo", 1.0)
	v.SetDefault("binning.energy.hi", 100.0)
	v.SetDefault("binning.energy.bins", 40)
	v.SetDefault("binning.energy.log", true)

	v.SetDefault("oscillation.theta12", 0.5836)
	v.SetDefault("oscillation.theta13", 0.1496)
	v.SetDefault("oscillation.theta23", 0.8587)
	v.SetDefault("oscillation.deltam21", 7.42e-5)
	v.SetDefault("oscillation.deltam31", 2.514e-3)
	v.SetDefault("oscillation.deltacp", 3.86)

	v.SetDefault("events.per_flavor", 50000)
	v.SetDefault("events.seed", 42)

	v.SetDefault("invariants.policy", "count")
	v.SetDefault("invariants.tolerance", 0.0)
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.Run.Target != "" {
		if _, err := prob3.ParseTarget(c.Run.Target); err != nil {
			return err
		}
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("run.workers must not be negative")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	if len(c.Earth.Shells) == 0 {
		return fmt.Errorf("earth.shells must contain at least one shell")
	}
	for _, ax := range []struct {
		name string
		cfg  AxisConfig
	}{{"binning.coszen", c.Binning.Coszen}, {"binning.energy", c.Binning.Energy}} {
		if ax.cfg.Bins < 1 {
			return fmt.Errorf("%s.bins must be at least 1", ax.name)
		}
		if ax.cfg.Hi <= ax.cfg.Lo {
			return fmt.Errorf("%s range must have lo < hi", ax.name)
		}
	}

	if c.Events.PerFlavor < 1 {
		return fmt.Errorf("events.per_flavor must be at least 1")
	}

	if c.Invariants.Policy != "count" && c.Invariants.Policy != "abort" {
		return fmt.Errorf("invariants.policy must be one of: count, abort")
	}
	if c.Invariants.Tolerance < 0 {
		return fmt.Errorf("invariants.tolerance must not be negative")
	}

	return nil
}

// Target resolves the configured execution target.
func (c *Config) Target() (prob3.Target, error) {
	if c.Run.Target == "" {
		return prob3.DefaultTarget(), nil
	}
	return prob3.ParseTarget(c.Run.Target)
}

// Model builds the earth model from the shell stack.
func (c *Config) Model() (*earth.Model, error) {
	shells := make([]earth.Shell, len(c.Earth.Shells))
	for i, s := range c.Earth.Shells {
		shells[i] = earth.Shell{
			OuterRadiusKm:    s.OuterRadiusKm,
			DensityGcc:       s.DensityGcc,
			ElectronFraction: s.ElectronFraction,
		}
	}
	return earth.NewModel(shells)
}

// Axes builds the analysis grid.
func (c *Config) Axes() (coszen, energy *hist.Axis, err error) {
	coszen, err = buildAxis(c.Binning.Coszen)
	if err != nil {
		return nil, nil, fmt.Errorf("binning.coszen: %w", err)
	}
	energy, err = buildAxis(c.Binning.Energy)
	if err != nil {
		return nil, nil, fmt.Errorf("binning.energy: %w", err)
	}
	return coszen, energy, nil
}

func buildAxis(a AxisConfig) (*hist.Axis, error) {
	if a.Log {
		return hist.LogAxis(a.Lo, a.Hi, a.Bins)
	}
	return hist.LinearAxis(a.Lo, a.Hi, a.Bins)
}

// Params returns the configured mixing parameters.
func (c *Config) Params() osc.Params {
	return osc.Params{
		Theta12:  c.Oscillation.Theta12,
		Theta13:  c.Oscillation.Theta13,
		Theta23:  c.Oscillation.Theta23,
		DeltaM21: c.Oscillation.DeltaM21,
		DeltaM31: c.Oscillation.DeltaM31,
		DeltaCP:  c.Oscillation.DeltaCP,
	}
}

// Policy resolves the configured invariant policy.
func (c *Config) Policy() pipeline.Policy {
	if c.Invariants.Policy == "abort" {
		return pipeline.PolicyAbort
	}
	return pipeline.PolicyCount
}
