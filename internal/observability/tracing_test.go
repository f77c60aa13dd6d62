package observability

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/signalsfoundry/flightpath-simulator/core"
	"github.com/signalsfoundry/flightpath-simulator/internal/logging"
	"github.com/signalsfoundry/flightpath-simulator/model"
)

func TestTracingConfigApplyEnv(t *testing.T) {
	t.Setenv("FLIGHTSIM_TRACING_ENABLED", "TRUE")
	t.Setenv("FLIGHTSIM_TRACING_EXPORTER", "OTLP")
	t.Setenv("FLIGHTSIM_OTLP_ENDPOINT", "collector:4317")
	t.Setenv("FLIGHTSIM_TRACING_SAMPLE_RATIO", "0.25")

	cfg := DefaultTracingConfig().ApplyEnv()
	if !cfg.Enabled || cfg.Exporter != "otlp" || cfg.Endpoint != "collector:4317" || cfg.SampleRatio != 0.25 {
		t.Fatalf("unexpected config from env: %+v", cfg)
	}
	if cfg.ServiceName != "flightpath-simulator" {
		t.Fatalf("service name = %q, want default", cfg.ServiceName)
	}
}

func TestTracingConfigIgnoresBadRatio(t *testing.T) {
	t.Setenv("FLIGHTSIM_TRACING_SAMPLE_RATIO", "2")
	if got := DefaultTracingConfig().ApplyEnv().SampleRatio; got != 1 {
		t.Fatalf("sample ratio = %v, want 1", got)
	}
}

func TestInitTracingRejectsUnknownExporter(t *testing.T) {
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.Exporter = "zipkin"
	if _, err := InitTracing(context.Background(), cfg, logging.Noop()); err == nil {
		t.Fatalf("expected error for unsupported exporter")
	}
}

func TestInitTracingExportsFlightSpan(t *testing.T) {
	prev := otel.GetTracerProvider()
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	cfg := DefaultTracingConfig()
	cfg.Enabled = true
	cfg.Writer = &buf

	shutdown, err := InitTracing(context.Background(), cfg, logging.Noop())
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}

	fc := core.NewFlightController(core.DefaultConfig(), nil, nil, core.WithID("traced-flight"))
	if err := fc.Start(context.Background(), []model.Waypoint{{Lat: 0, Lng: 0, Altitude: 10}}, model.GeoPosition{}); err != nil {
		t.Fatalf("Start: %v", err)
	}
	now := time.Unix(0, 0)
	for i := 0; i < 5 && fc.Status() == model.StatusFlying; i++ {
		fc.Tick(now)
		now = now.Add(time.Second)
	}
	if fc.Status() != model.StatusCompleted {
		t.Fatalf("status = %v, want completed", fc.Status())
	}

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"Name": "flight"`, "traced-flight", "segment.planned"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in exported spans, got:\n%s", want, out)
		}
	}
}
