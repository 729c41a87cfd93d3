// Package config provides configuration loading and access for the simulator.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulator configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Pointer    PointerConfig    `yaml:"pointer"`
	GPU        GPUConfig        `yaml:"gpu"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// SimulationConfig holds particle simulation parameters and their bounds.
// Engine setters clamp against these bounds; out-of-range input is never
// rejected with an error.
type SimulationConfig struct {
	DefaultCount int `yaml:"default_count"` // Particle count at startup
	MinCount     int `yaml:"min_count"`     // Lower clamp for SetParticleCount
	MaxCount     int `yaml:"max_count"`     // Upper clamp; requests above fail allocation

	DefaultGravity float64 `yaml:"default_gravity"` // Pointer force strength
	MinGravity     float64 `yaml:"min_gravity"`
	MaxGravity     float64 `yaml:"max_gravity"`

	DefaultFriction float64 `yaml:"default_friction"` // Velocity retention per 60Hz tick
	MinFriction     float64 `yaml:"min_friction"`
	MaxFriction     float64 `yaml:"max_friction"` // Strictly below 1 so speed decays

	DefaultTrailFade float64 `yaml:"default_trail_fade"` // Fade overlay alpha per frame
	MinTrailFade     float64 `yaml:"min_trail_fade"`
	MaxTrailFade     float64 `yaml:"max_trail_fade"`

	MaxDT float64 `yaml:"max_dt"` // Upper clamp on measured frame dt (seconds)
}

// PointerConfig holds pointer force field parameters.
type PointerConfig struct {
	MinDistance float64 `yaml:"min_distance"` // Force falloff clamp (pixels)
}

// GPUConfig holds GPU rendering parameters.
type GPUConfig struct {
	FieldTextureSize    int     `yaml:"field_texture_size"`    // Force field overlay texture resolution
	FieldUpdateInterval int     `yaml:"field_update_interval"` // Ticks between overlay regenerations
	FieldOverlayAlpha   float64 `yaml:"field_overlay_alpha"`   // Overlay compositing alpha [0,1]
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	FrameWindow int     `yaml:"frame_window"` // Frames per rolling metrics window
	StatsWindow float64 `yaml:"stats_window"` // Seconds between perf log events
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32 // Screen.Width as float32
	ScreenH32 float32 // Screen.Height as float32
	MaxDT32   float32 // Simulation.MaxDT as float32
	MinDist32 float32 // Pointer.MinDistance as float32
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

	// Sanitize and compute derived values
	cfg.sanitize()
	cfg.computeDerived()

	return cfg, nil
}

// sanitize pulls loaded values back into their declared ranges.
// Bad user config degrades to the nearest valid value, never to a failure.
func (c *Config) sanitize() {
	if c.Simulation.MinCount < 1 {
		c.Simulation.MinCount = 1
	}
	if c.Simulation.MaxCount < c.Simulation.MinCount {
		c.Simulation.MaxCount = c.Simulation.MinCount
	}
	c.Simulation.DefaultCount = clampInt(c.Simulation.DefaultCount, c.Simulation.MinCount, c.Simulation.MaxCount)

	// Friction must stay strictly below 1 or velocity never decays
	if c.Simulation.MaxFriction >= 1 {
		c.Simulation.MaxFriction = 0.999
	}
	if c.Simulation.MinFriction < 0 {
		c.Simulation.MinFriction = 0
	}
	c.Simulation.DefaultGravity = clampFloat(c.Simulation.DefaultGravity, c.Simulation.MinGravity, c.Simulation.MaxGravity)
	c.Simulation.DefaultFriction = clampFloat(c.Simulation.DefaultFriction, c.Simulation.MinFriction, c.Simulation.MaxFriction)
	c.Simulation.DefaultTrailFade = clampFloat(c.Simulation.DefaultTrailFade, c.Simulation.MinTrailFade, c.Simulation.MaxTrailFade)

	if c.Simulation.MaxDT <= 0 {
		c.Simulation.MaxDT = 1.0 / 30.0
	}
	if c.Pointer.MinDistance < 1 {
		c.Pointer.MinDistance = 1
	}
	if c.Telemetry.FrameWindow < 1 {
		c.Telemetry.FrameWindow = 60
	}
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.MaxDT32 = float32(c.Simulation.MaxDT)
	c.Derived.MinDist32 = float32(c.Pointer.MinDistance)
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

func clampInt(x, min, max int) int {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

func clampFloat(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
