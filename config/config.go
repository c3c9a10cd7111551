// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/drift/canvas"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// MaxOctaves bounds the noise octave count; layers beyond it are 1x1 pixels.
const MaxOctaves = 16

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Noise      NoiseConfig      `yaml:"noise"`
	Palette    PaletteConfig    `yaml:"palette"`
	Export     ExportConfig     `yaml:"export"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	API        APIConfig        `yaml:"api"`
	Headless   HeadlessConfig   `yaml:"headless"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds canvas/window settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds the per-session particle constants.
type SimulationConfig struct {
	MaxAge          int     `yaml:"max_age"`          // Particles live while age < max_age
	SpawnPerTick    int     `yaml:"spawn_per_tick"`   // Particles spawned per tick while the pointer is down
	SpawnVelocity   float64 `yaml:"spawn_velocity"`   // Initial velocity range per axis
	VelocityDamping float64 `yaml:"velocity_damping"` // Fraction of velocity kept per tick
	FieldInfluence  float64 `yaml:"field_influence"`  // Noise sample multiplier
	ParticleRadius  float64 `yaml:"particle_radius"`
	LineWidth       float64 `yaml:"line_width"`
	EdgePolicy      string  `yaml:"edge_policy"` // clamp | wrap
}

// NoiseConfig holds noise field generation parameters.
type NoiseConfig struct {
	Kind         string  `yaml:"kind"`          // octave | simplex
	Octaves      int     `yaml:"octaves"`
	SimplexScale float64 `yaml:"simplex_scale"` // Base frequency for the simplex generator
}

// SwatchConfig is one selectable draw style.
type SwatchConfig struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"` // Hex color, e.g. "#0c0202"
	Blend string `yaml:"blend"` // source-over | lighter
}

// PaletteConfig holds the selectable draw styles.
type PaletteConfig struct {
	Default  string         `yaml:"default"` // Swatch used when nothing is selected
	Swatches []SwatchConfig `yaml:"swatches"`
}

// ExportConfig holds image export settings.
type ExportConfig struct {
	Dir     string `yaml:"dir"`
	Quality int    `yaml:"quality"` // JPEG quality 1-100
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// APIConfig holds HTTP API settings.
type APIConfig struct {
	Addr           string   `yaml:"addr"` // Empty disables the API
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// HeadlessConfig drives the timer-based run without a window.
type HeadlessConfig struct {
	IntervalMS  int `yaml:"interval_ms"`  // Timer period
	PeriodTicks int `yaml:"period_ticks"` // Scripted pointer cycle length
	PressTicks  int `yaml:"press_ticks"`  // Ticks per cycle with the pointer down
}

// Swatch is a parsed palette entry.
type Swatch struct {
	Name  string
	Style canvas.Style
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Swatches     []Swatch
	DefaultIndex int // Index of Palette.Default in Swatches
}

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

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays YAML data onto the config. Only fields present in data change.
// Derived values are not recomputed; call Load for a validated config.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	return nil
}

// finish validates the config and computes derived values.
func (c *Config) finish() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.computeDerived()
	return nil
}

// Validate checks values the simulation treats as contract preconditions.
func (c *Config) Validate() error {
	var errs []error
	if c.Screen.Width <= 0 || c.Screen.Height <= 0 {
		errs = append(errs, fmt.Errorf("screen size must be positive, got %dx%d", c.Screen.Width, c.Screen.Height))
	}
	if c.Simulation.MaxAge <= 0 {
		errs = append(errs, fmt.Errorf("simulation.max_age must be positive, got %d", c.Simulation.MaxAge))
	}
	if c.Simulation.SpawnPerTick < 0 {
		errs = append(errs, fmt.Errorf("simulation.spawn_per_tick must not be negative, got %d", c.Simulation.SpawnPerTick))
	}
	if c.Simulation.ParticleRadius <= 0 {
		errs = append(errs, fmt.Errorf("simulation.particle_radius must be positive, got %v", c.Simulation.ParticleRadius))
	}
	switch c.Simulation.EdgePolicy {
	case "", "clamp", "wrap":
	default:
		errs = append(errs, fmt.Errorf("simulation.edge_policy: unknown policy %q", c.Simulation.EdgePolicy))
	}
	if c.Noise.Octaves < 1 || c.Noise.Octaves > MaxOctaves {
		errs = append(errs, fmt.Errorf("noise.octaves must be in [1, %d], got %d", MaxOctaves, c.Noise.Octaves))
	}
	switch c.Noise.Kind {
	case "", "octave", "simplex":
	default:
		errs = append(errs, fmt.Errorf("noise.kind: unknown generator %q", c.Noise.Kind))
	}
	if len(c.Palette.Swatches) == 0 {
		errs = append(errs, errors.New("palette.swatches must not be empty"))
	}
	for i, s := range c.Palette.Swatches {
		if _, err := colorful.Hex(s.Color); err != nil {
			errs = append(errs, fmt.Errorf("palette.swatches[%d] %q: %w", i, s.Name, err))
		}
		if _, err := canvas.ParseBlend(s.Blend); err != nil {
			errs = append(errs, fmt.Errorf("palette.swatches[%d] %q: %w", i, s.Name, err))
		}
	}
	if c.Export.Quality < 1 || c.Export.Quality > 100 {
		errs = append(errs, fmt.Errorf("export.quality must be in [1, 100], got %d", c.Export.Quality))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Swatches = make([]Swatch, len(c.Palette.Swatches))
	c.Derived.DefaultIndex = 0
	for i, s := range c.Palette.Swatches {
		col, _ := colorful.Hex(s.Color)
		blend, _ := canvas.ParseBlend(s.Blend)
		r, g, b := col.RGB255()
		c.Derived.Swatches[i] = Swatch{
			Name: s.Name,
			Style: canvas.Style{
				Color: color.RGBA{R: r, G: g, B: b, A: 255},
				Blend: blend,
			},
		}
		if s.Name == c.Palette.Default {
			c.Derived.DefaultIndex = i
		}
	}
}

// DefaultSwatch returns the style used when no palette entry is selected.
func (c *Config) DefaultSwatch() Swatch {
	return c.Derived.Swatches[c.Derived.DefaultIndex]
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
