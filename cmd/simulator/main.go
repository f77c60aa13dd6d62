package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/signalsfoundry/flightpath-simulator/core"
	"github.com/signalsfoundry/flightpath-simulator/internal/config"
	"github.com/signalsfoundry/flightpath-simulator/internal/logging"
	"github.com/signalsfoundry/flightpath-simulator/internal/observability"
	"github.com/signalsfoundry/flightpath-simulator/internal/terrain"
	"github.com/signalsfoundry/flightpath-simulator/model"
	"github.com/signalsfoundry/flightpath-simulator/timectrl"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML mission file (built-in defaults when empty)")
	duration := flag.Duration("duration", 0, "stop after this much simulated time; 0 runs until the flight ends")
	frame := flag.Duration("frame", 0, "frame interval, overrides engine.frame_interval")
	accelerated := flag.Bool("accelerated", false, "emit frames back to back instead of in real time")
	metricsAddr := flag.String("metrics-addr", "", "HTTP address for Prometheus /metrics, overrides metrics.addr")
	flag.Parse()

	// Until the config is loaded only the environment can shape logging.
	bootLog := logging.NewFromEnv()
	ctx := context.Background()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		bootLog.Error(ctx, "failed to load config", logging.String("path", *configPath), logging.Err(err))
		os.Exit(2)
	}
	if *frame > 0 {
		cfg.Engine.FrameInterval = *frame
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		bootLog.Error(ctx, "invalid config", logging.Err(err))
		os.Exit(2)
	}

	mode := timectrl.RealTime
	if *accelerated {
		mode = timectrl.Accelerated
	}
	if err := run(cfg, mode, *duration); err != nil {
		os.Exit(1)
	}
}

// errFlightAborted is returned by run when the flight ends aborted for any
// reason other than an operator cancel.
var errFlightAborted = errors.New("flight aborted")

func loadConfig(path string) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cfg *config.Config, mode timectrl.Mode, duration time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, log := logging.WithRunLogger(ctx, logging.New(cfg.LoggerConfig()))
	ctx = logging.ContextWithLogger(ctx, log)

	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.Err(err))
		return err
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewFlightCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.Err(err))
		return err
	}
	if srv := serveMetrics(ctx, cfg.Metrics.Addr, collector); srv != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	clock := timectrl.NewFrameClock(time.Now().UTC(), cfg.Engine.FrameInterval, mode)
	provider, sampler, cache := buildTerrain(cfg.Terrain, clock)

	// flightCtx ends the frame loop once the flight reaches a terminal status.
	flightCtx, flightDone := context.WithCancel(ctx)
	defer flightDone()

	published := 0
	observer := core.ObserverFuncs{
		Position: func(pos model.GeoPosition) {
			published++
			fmt.Printf("[%s] %s\n", clock.Now().Format("15:04:05.000"), pos)
		},
		Status: func(status model.Status, reason string) {
			if status.Terminal() {
				flightDone()
			}
		},
	}

	fc := core.NewFlightController(cfg.FlightConfig(), provider, observer,
		core.WithLogger(log),
		core.WithMetricsRecorder(collector),
	)
	if err := fc.Start(ctx, cfg.Route, cfg.Drone); err != nil {
		var empty *core.EmptyRouteError
		if errors.As(err, &empty) {
			log.Error(ctx, "mission has no route points", logging.Err(err))
		} else {
			log.Error(ctx, "mission rejected", logging.Err(err))
		}
		return err
	}

	sampleEvery := uint64(cfg.Terrain.SampleEvery)
	if sampleEvery == 0 {
		sampleEvery = 1
	}
	clock.AddListener(func(now time.Time) {
		// The terrain subsystem runs at its own cadence; the controller only
		// ever sees the latest reading.
		if sampler != nil && (clock.Frames()-1)%sampleEvery == 0 {
			sampler.Refresh(fc.State().Position)
		}
		fc.Tick(now)
	})

	log.Info(ctx, "starting mission preview",
		logging.String("flight_id", fc.ID()),
		logging.Int("waypoints", len(cfg.Route)),
		logging.String("mode", mode.String()),
		logging.String("frame", cfg.Engine.FrameInterval.String()),
		logging.String("terrain", cfg.Terrain.Kind),
	)
	<-clock.Run(flightCtx, duration)

	// The frame loop has stopped, so this goroutine now owns the controller.
	if fc.Status() == model.StatusFlying {
		if ctx.Err() != nil {
			log.Info(ctx, "interrupted; cancelling flight")
		} else {
			log.Info(ctx, "simulation duration elapsed; cancelling flight")
		}
		fc.Cancel()
	}

	st := fc.State()
	fields := []logging.Field{
		logging.String("status", st.Status.String()),
		logging.String("reason", st.Reason),
		logging.Int("waypoints_reached", st.WaypointIndex),
		logging.Int("positions_published", published),
		logging.Any("frames", clock.Frames()),
		logging.Any("position", st.Position),
		logging.Bool("interrupted", ctx.Err() != nil),
	}
	if cache != nil {
		hits, misses := cache.Stats()
		fields = append(fields, logging.Any("terrain_cache_hits", hits), logging.Any("terrain_cache_misses", misses))
	}
	log.Info(ctx, "mission preview finished", fields...)

	if st.Status == model.StatusAborted && st.Reason != model.ReasonCancelled {
		return fmt.Errorf("%w: %s", errFlightAborted, st.Reason)
	}
	return nil
}

// buildTerrain assembles the ground-clearance chain for the configured
// terrain kind. Elevation lookups go through an expiring cache and the
// controller reads them through a sampler refreshed on the frame loop.
func buildTerrain(cfg config.TerrainConfig, clock timectrl.SimClock) (core.GroundClearanceProvider, *terrain.Sampler, *terrain.CachedElevation) {
	var source terrain.ElevationSource
	switch cfg.Kind {
	case "flat":
		source = terrain.Flat{ElevationM: cfg.BaseM}
	case "synthetic":
		source = terrain.Synthetic{BaseM: cfg.BaseM, AmplitudeM: cfg.AmplitudeM, WavelengthM: cfg.WavelengthM}
	default:
		return core.NoClearanceData, nil, nil
	}

	cache := terrain.NewCachedElevation(source, cfg.CacheSize, 0, cfg.CacheTTL)
	sampler := terrain.NewSampler(clock, terrain.Clearance{Source: cache}, cfg.MaxAge)
	return sampler, sampler, cache
}

func serveMetrics(ctx context.Context, addr string, collector *observability.FlightCollector) *http.Server {
	if addr == "" || collector == nil {
		return nil
	}
	log := logging.LoggerFromContext(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn(ctx, "metrics server exited", logging.Err(err))
		}
	}()

	log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
