package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/multierr"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	fc := cfg.FlightConfig()
	if fc.HorizontalSpeedMps != 5 || fc.VerticalSpeedMps != 5 || fc.PublishInterval != 40*time.Millisecond || fc.ClearanceTolerance != 0.2 {
		t.Fatalf("unexpected flight config %+v", fc)
	}
}

func TestParseOverlaysDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
engine:
  horizontal_speed_mps: 12
  publish_interval: 100ms
drone: {lat: 55.139592, lng: 37.962471, heading: 90}
route:
  - {lat: 55.14, lng: 37.96, altitude: 30}
  - {lat: 55.15, lng: 37.97, altitude: 10}
terrain:
  kind: flat
  base_m: 120
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Engine.HorizontalSpeedMps != 12 || cfg.Engine.PublishInterval != 100*time.Millisecond {
		t.Fatalf("engine not parsed: %+v", cfg.Engine)
	}
	if cfg.Engine.VerticalSpeedMps != 5 || cfg.Engine.FrameInterval != 16*time.Millisecond {
		t.Fatalf("defaults lost: %+v", cfg.Engine)
	}
	if cfg.Drone.Lat != 55.139592 || cfg.Drone.Heading != 90 {
		t.Fatalf("drone not parsed: %+v", cfg.Drone)
	}
	if len(cfg.Route) != 2 || cfg.Route[1].Altitude != 10 {
		t.Fatalf("route not parsed: %+v", cfg.Route)
	}
	if cfg.Terrain.Kind != "flat" || cfg.Terrain.BaseM != 120 || cfg.Terrain.CacheSize != 4096 {
		t.Fatalf("terrain not parsed: %+v", cfg.Terrain)
	}
	if cfg.Tracing.ServiceName != "flightpath-simulator" {
		t.Fatalf("tracing defaults lost: %+v", cfg.Tracing)
	}
}

func TestLoadExampleMission(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "mission.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("example mission invalid: %v", err)
	}
	if len(cfg.Route) == 0 {
		t.Fatalf("example mission has no route")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("engine: [1, 2"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parse simulator config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FLIGHTSIM_LOG_LEVEL", "debug")
	t.Setenv("FLIGHTSIM_METRICS_ADDR", ":9100")
	t.Setenv("FLIGHTSIM_VERTICAL_SPEED_MPS", "2.5")
	t.Setenv("FLIGHTSIM_PUBLISH_INTERVAL", "20ms")
	t.Setenv("FLIGHTSIM_TRACING_ENABLED", "true")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Metrics.Addr != ":9100" {
		t.Fatalf("unexpected logging/metrics %+v %+v", cfg.Logging, cfg.Metrics)
	}
	if cfg.Engine.VerticalSpeedMps != 2.5 || cfg.Engine.PublishInterval != 20*time.Millisecond {
		t.Fatalf("unexpected engine %+v", cfg.Engine)
	}
	if !cfg.Tracing.Enabled {
		t.Fatalf("tracing env not applied")
	}
}

func TestApplyEnvRejectsBadNumber(t *testing.T) {
	t.Setenv("FLIGHTSIM_HORIZONTAL_SPEED_MPS", "fast")
	if err := Default().ApplyEnv(); err == nil {
		t.Fatalf("expected error for non-numeric speed")
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Engine.HorizontalSpeedMps = 0
	cfg.Engine.VerticalSpeedMps = -1
	cfg.Engine.FrameInterval = 0
	cfg.Terrain.Kind = "lidar"

	err := cfg.Validate()
	if got := len(multierr.Errors(err)); got != 4 {
		t.Fatalf("got %d problems, want 4: %v", got, err)
	}
}

