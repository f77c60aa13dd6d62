// Package config loads simulator configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/signalsfoundry/flightpath-simulator/core"
	"github.com/signalsfoundry/flightpath-simulator/internal/logging"
	"github.com/signalsfoundry/flightpath-simulator/internal/observability"
	"github.com/signalsfoundry/flightpath-simulator/model"
)

// ─── Sections ────────────────────────────────────────────────────────────

type EngineConfig struct {
	HorizontalSpeedMps float64       `yaml:"horizontal_speed_mps"`
	VerticalSpeedMps   float64       `yaml:"vertical_speed_mps"`
	PublishInterval    time.Duration `yaml:"publish_interval"`
	ClearanceTolerance float64       `yaml:"clearance_tolerance_m"`
	FrameInterval      time.Duration `yaml:"frame_interval"`
}

type TerrainConfig struct {
	Kind        string        `yaml:"kind"` // none, flat or synthetic
	BaseM       float64       `yaml:"base_m"`
	AmplitudeM  float64       `yaml:"amplitude_m"`
	WavelengthM float64       `yaml:"wavelength_m"`
	CacheSize   int           `yaml:"cache_size"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
	// SampleEvery is the terrain subsystem's refresh cadence in frames.
	SampleEvery int           `yaml:"sample_every"`
	MaxAge      time.Duration `yaml:"max_age"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the /metrics listener
}

// Config is the top-level structure of a simulator YAML file. Drone and
// Route mirror the mission shape shared with the planning UI.
type Config struct {
	Engine  EngineConfig                `yaml:"engine"`
	Drone   model.GeoPosition           `yaml:"drone"`
	Route   []model.Waypoint            `yaml:"route"`
	Terrain TerrainConfig               `yaml:"terrain"`
	Logging LoggingConfig               `yaml:"logging"`
	Metrics MetricsConfig               `yaml:"metrics"`
	Tracing observability.TracingConfig `yaml:"tracing"`
}

// Default returns a configuration with every value set.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			HorizontalSpeedMps: core.DefaultHorizontalSpeedMps,
			VerticalSpeedMps:   core.DefaultVerticalSpeedMps,
			PublishInterval:    core.DefaultPublishInterval,
			ClearanceTolerance: core.DefaultClearanceTolerance,
			FrameInterval:      16 * time.Millisecond,
		},
		Terrain: TerrainConfig{
			Kind:        "flat",
			AmplitudeM:  20,
			WavelengthM: 1000,
			CacheSize:   4096,
			CacheTTL:    10 * time.Minute,
			SampleEvery: 3,
			MaxAge:      250 * time.Millisecond,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Tracing: observability.DefaultTracingConfig(),
	}
}

// ─── Loaders ─────────────────────────────────────────────────────────────

// Load reads path and overlays it on Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read simulator config: %w", err)
	}
	return Parse(data)
}

// Parse overlays YAML data on Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse simulator config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays FLIGHTSIM_* environment variables.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("FLIGHTSIM_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FLIGHTSIM_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("FLIGHTSIM_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("FLIGHTSIM_METRICS_ADDR"); v != "" {
		c.Metrics.Addr = v
	}
	if v := os.Getenv("FLIGHTSIM_HORIZONTAL_SPEED_MPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FLIGHTSIM_HORIZONTAL_SPEED_MPS: %w", err)
		}
		c.Engine.HorizontalSpeedMps = f
	}
	if v := os.Getenv("FLIGHTSIM_VERTICAL_SPEED_MPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FLIGHTSIM_VERTICAL_SPEED_MPS: %w", err)
		}
		c.Engine.VerticalSpeedMps = f
	}
	if v := os.Getenv("FLIGHTSIM_PUBLISH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FLIGHTSIM_PUBLISH_INTERVAL: %w", err)
		}
		c.Engine.PublishInterval = d
	}
	c.Tracing = c.Tracing.ApplyEnv()
	return nil
}

// Validate rejects settings the engine cannot run with. Route contents are
// checked by the flight controller itself.
func (c *Config) Validate() error {
	var err error
	if c.Engine.HorizontalSpeedMps <= 0 {
		err = multierr.Append(err, fmt.Errorf("engine.horizontal_speed_mps must be positive, got %v", c.Engine.HorizontalSpeedMps))
	}
	if c.Engine.VerticalSpeedMps <= 0 {
		err = multierr.Append(err, fmt.Errorf("engine.vertical_speed_mps must be positive, got %v", c.Engine.VerticalSpeedMps))
	}
	if c.Engine.PublishInterval < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.publish_interval must not be negative, got %v", c.Engine.PublishInterval))
	}
	if c.Engine.ClearanceTolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.clearance_tolerance_m must not be negative, got %v", c.Engine.ClearanceTolerance))
	}
	if c.Engine.FrameInterval <= 0 {
		err = multierr.Append(err, fmt.Errorf("engine.frame_interval must be positive, got %v", c.Engine.FrameInterval))
	}
	switch c.Terrain.Kind {
	case "", "none", "flat", "synthetic":
	default:
		err = multierr.Append(err, fmt.Errorf("terrain.kind %q is not one of none, flat, synthetic", c.Terrain.Kind))
	}
	return err
}

// FlightConfig returns the flight controller configuration.
func (c *Config) FlightConfig() core.Config {
	return core.Config{
		HorizontalSpeedMps: c.Engine.HorizontalSpeedMps,
		VerticalSpeedMps:   c.Engine.VerticalSpeedMps,
		PublishInterval:    c.Engine.PublishInterval,
		ClearanceTolerance: c.Engine.ClearanceTolerance,
	}
}

// LoggerConfig returns the logging configuration.
func (c *Config) LoggerConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		File:   c.Logging.File,
	}
}
