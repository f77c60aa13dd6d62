package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/flightpath-simulator/internal/logging"
	"github.com/signalsfoundry/flightpath-simulator/model"
)

const tracerName = "github.com/signalsfoundry/flightpath-simulator/core"

// Config tunes a FlightController.
type Config struct {
	HorizontalSpeedMps float64
	VerticalSpeedMps   float64
	PublishInterval    time.Duration
	ClearanceTolerance float64
}

// DefaultConfig returns the engine defaults: 5 m/s on both axes, 40ms
// publish interval and 0.2m clearance tolerance.
func DefaultConfig() Config {
	return Config{
		HorizontalSpeedMps: DefaultHorizontalSpeedMps,
		VerticalSpeedMps:   DefaultVerticalSpeedMps,
		PublishInterval:    DefaultPublishInterval,
		ClearanceTolerance: DefaultClearanceTolerance,
	}
}

// FlightObserver receives the engine's outputs.
type FlightObserver interface {
	OnPositionUpdate(pos model.GeoPosition)
	OnStatusChange(status model.Status, reason string)
}

// ObserverFuncs adapts plain functions to FlightObserver. Nil fields are
// ignored.
type ObserverFuncs struct {
	Position func(model.GeoPosition)
	Status   func(model.Status, string)
}

func (o ObserverFuncs) OnPositionUpdate(pos model.GeoPosition) {
	if o.Position != nil {
		o.Position(pos)
	}
}

func (o ObserverFuncs) OnStatusChange(status model.Status, reason string) {
	if o.Status != nil {
		o.Status(status, reason)
	}
}

// FlightMetricsRecorder receives engine counters. Implementations must be
// cheap; they are called on every tick.
type FlightMetricsRecorder interface {
	ObserveTick()
	ObserveSegment(plan model.SegmentPlan)
	ObserveTransition(from, to model.Status, reason string)
	ObservePublish(published bool)
}

// FlightControllerOption customises FlightController construction.
type FlightControllerOption func(*FlightController)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) FlightControllerOption {
	return func(c *FlightController) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetricsRecorder attaches an optional metrics recorder.
func WithMetricsRecorder(m FlightMetricsRecorder) FlightControllerOption {
	return func(c *FlightController) {
		c.metrics = m
	}
}

// WithTracer overrides the tracer used for per-flight spans. The global
// OpenTelemetry provider is used otherwise.
func WithTracer(t trace.Tracer) FlightControllerOption {
	return func(c *FlightController) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithID sets the flight identifier used in logs, metrics and spans.
func WithID(id string) FlightControllerOption {
	return func(c *FlightController) {
		if id != "" {
			c.id = id
		}
	}
}

// FlightController runs one simulated flight along a waypoint route. It
// is driven by an external per-frame signal: every Tick plans (once per
// segment), interpolates, checks ground clearance and publishes.
//
// A FlightController is not safe for concurrent use. Start, Tick and
// Cancel must be called from the goroutine that owns the frame loop.
// Separate instances share no state.
type FlightController struct {
	id       string
	planner  *SegmentPlanner
	monitor  *CollisionMonitor
	sink     *PositionSink
	provider GroundClearanceProvider
	observer FlightObserver

	log     logging.Logger
	metrics FlightMetricsRecorder
	tracer  trace.Tracer

	waypoints []model.Waypoint
	state     model.FlightState
	lastTick  time.Time

	// flightCtx carries the active flight span for logging.
	flightCtx context.Context
	span      trace.Span
}

// NewFlightController builds an idle controller. provider and observer
// may be nil.
func NewFlightController(cfg Config, provider GroundClearanceProvider, observer FlightObserver, opts ...FlightControllerOption) *FlightController {
	if cfg.PublishInterval < 0 {
		cfg.PublishInterval = 0
	}
	c := &FlightController{
		id: uuid.NewString(),
		planner: &SegmentPlanner{
			HorizontalSpeedMps: cfg.HorizontalSpeedMps,
			VerticalSpeedMps:   cfg.VerticalSpeedMps,
		},
		monitor:   &CollisionMonitor{Tolerance: cfg.ClearanceTolerance},
		provider:  provider,
		observer:  observer,
		log:       logging.Noop(),
		tracer:    otel.Tracer(tracerName),
		flightCtx: context.Background(),
		state:     model.FlightState{Status: model.StatusIdle},
	}
	if c.observer == nil {
		c.observer = ObserverFuncs{}
	}
	c.sink = NewPositionSink(cfg.PublishInterval, c.observer.OnPositionUpdate)
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.log = c.log.With(logging.String("flight_id", c.id))
	return c
}

// ID returns the flight identifier.
func (c *FlightController) ID() string { return c.id }

// Status returns the current lifecycle status.
func (c *FlightController) Status() model.Status { return c.state.Status }

// State returns a copy of the flight state.
func (c *FlightController) State() model.FlightState {
	st := c.state
	if st.CurrentPlan != nil {
		plan := *st.CurrentPlan
		st.CurrentPlan = &plan
	}
	return st
}

// Start begins a new flight from initial along waypoints, discarding any
// previous flight. An empty route is rejected with *EmptyRouteError and
// leaves the status untouched. Non-finite coordinates abort the flight
// with reason "invalid-waypoint" and return the combined
// *InvalidWaypointError values.
func (c *FlightController) Start(ctx context.Context, waypoints []model.Waypoint, initial model.GeoPosition) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if len(waypoints) == 0 {
		err := &EmptyRouteError{}
		c.log.Warn(ctx, "flight start rejected", logging.Err(err))
		if c.metrics != nil {
			c.metrics.ObserveTransition(c.state.Status, c.state.Status, model.ReasonEmptyRoute)
		}
		c.observer.OnStatusChange(c.state.Status, model.ReasonEmptyRoute)
		return err
	}

	c.endSpan(nil, "superseded")
	c.flightCtx, c.span = c.tracer.Start(ctx, "flight", trace.WithAttributes(
		attribute.String("flight.id", c.id),
		attribute.Int("flight.waypoints", len(waypoints)),
	))

	if err := ValidateRoute(waypoints, initial); err != nil {
		c.waypoints = nil
		c.state = model.FlightState{Position: initial, Status: c.state.Status}
		c.log.Warn(c.flightCtx, "flight route rejected", logging.Err(err))
		c.transition(model.StatusAborted, model.ReasonInvalidWaypoint)
		c.endSpan(err, model.ReasonInvalidWaypoint)
		return err
	}

	c.waypoints = append([]model.Waypoint(nil), waypoints...)
	initial.Heading = NormalizeAngle(initial.Heading)
	prev := c.state.Status
	c.state = model.FlightState{
		Position:      initial,
		WaypointIndex: 0,
		Status:        prev,
	}
	c.sink.Reset()

	c.log.Info(c.flightCtx, "flight started",
		logging.Int("waypoints", len(waypoints)),
		logging.Any("initial", initial),
	)
	c.transition(model.StatusFlying, "")
	return nil
}

// Tick advances the flight to now. It is a no-op unless the flight is
// flying.
func (c *FlightController) Tick(now time.Time) {
	if c.state.Status != model.StatusFlying {
		return
	}
	c.lastTick = now
	if c.metrics != nil {
		c.metrics.ObserveTick()
	}

	if c.state.CurrentPlan == nil {
		if !c.planSegment(now) {
			return
		}
	}

	plan := c.state.CurrentPlan
	elapsedMs := float64(now.Sub(c.state.SegmentStart)) / float64(time.Millisecond)
	pos, t := Interpolate(*plan, elapsedMs)
	c.state.Position = pos

	if abort, clearance, _ := c.monitor.Sample(c.provider, pos); abort {
		c.log.Warn(c.flightCtx, "ground proximity abort",
			logging.Float64("clearance_m", clearance),
			logging.Int("waypoint_index", c.state.WaypointIndex),
			logging.Any("position", pos),
		)
		c.finish(model.StatusAborted, model.ReasonGroundProximity, now, true)
		return
	}

	if t >= 1 {
		c.state.WaypointIndex++
		c.state.CurrentPlan = nil
		if c.state.WaypointIndex >= len(c.waypoints) {
			c.log.Info(c.flightCtx, "flight completed", logging.Any("position", pos))
			c.finish(model.StatusCompleted, "", now, true)
			return
		}
		c.log.Debug(c.flightCtx, "waypoint reached", logging.Int("waypoint_index", c.state.WaypointIndex-1))
	}

	published := c.sink.Offer(pos, now)
	if c.metrics != nil {
		c.metrics.ObservePublish(published)
	}
}

// Cancel aborts the flight with reason "cancelled". It takes effect
// immediately rather than on the next Tick. It is idempotent: cancelling
// an aborted flight does nothing. A flying vehicle's frozen position is
// published once.
func (c *FlightController) Cancel() {
	switch c.state.Status {
	case model.StatusAborted:
		return
	case model.StatusFlying:
		c.log.Info(c.flightCtx, "flight cancelled", logging.Any("position", c.state.Position))
		c.finish(model.StatusAborted, model.ReasonCancelled, c.lastTick, true)
	default:
		c.finish(model.StatusAborted, model.ReasonCancelled, c.lastTick, false)
	}
}

func (c *FlightController) planSegment(now time.Time) bool {
	idx := c.state.WaypointIndex
	var lookahead *model.Waypoint
	if idx+1 < len(c.waypoints) {
		next := c.waypoints[idx+1]
		lookahead = &next
	}

	plan, err := c.planner.Plan(c.state.Position, c.waypoints[idx], lookahead)
	if err != nil {
		var invalid *InvalidWaypointError
		if errors.As(err, &invalid) && invalid.Index != InitialStateIndex {
			invalid.Index += idx
		}
		c.log.Error(c.flightCtx, "segment planning failed",
			logging.Int("waypoint_index", idx),
			logging.Err(err),
		)
		c.finish(model.StatusAborted, model.ReasonInvalidWaypoint, now, true)
		return false
	}

	c.state.CurrentPlan = &plan
	c.state.SegmentStart = now
	if c.metrics != nil {
		c.metrics.ObserveSegment(plan)
	}
	if c.span != nil {
		c.span.AddEvent("segment.planned", trace.WithAttributes(
			attribute.Int("waypoint_index", idx),
			attribute.Float64("duration_ms", plan.DurationMs),
			attribute.Float64("target_heading", plan.TargetHeading),
			attribute.Float64("heading_delta", plan.HeadingDelta),
		))
	}
	c.log.Debug(c.flightCtx, "segment planned",
		logging.Int("waypoint_index", idx),
		logging.Float64("duration_ms", plan.DurationMs),
		logging.Float64("target_heading", plan.TargetHeading),
		logging.Float64("heading_delta", plan.HeadingDelta),
	)
	return true
}

// finish moves the flight into a terminal status. When flush is set the
// final position is published before the status change, exactly once.
func (c *FlightController) finish(status model.Status, reason string, now time.Time, flush bool) {
	from := c.state.Status
	c.state.CurrentPlan = nil
	c.state.Status = status
	c.state.Reason = reason
	if flush {
		c.sink.Flush(c.state.Position, now)
		if c.metrics != nil {
			c.metrics.ObservePublish(true)
		}
	}
	c.notify(from, status, reason)

	if status == model.StatusAborted {
		c.endSpan(errors.New(reason), reason)
		return
	}
	c.endSpan(nil, status.String())
}

func (c *FlightController) transition(to model.Status, reason string) {
	from := c.state.Status
	c.state.Status = to
	c.state.Reason = reason
	c.notify(from, to, reason)
}

func (c *FlightController) notify(from, to model.Status, reason string) {
	if c.metrics != nil {
		c.metrics.ObserveTransition(from, to, reason)
	}
	c.log.Debug(c.flightCtx, "flight status changed",
		logging.String("from", from.String()),
		logging.String("to", to.String()),
		logging.String("reason", reason),
	)
	c.observer.OnStatusChange(to, reason)
}

func (c *FlightController) endSpan(err error, reason string) {
	if c.span == nil {
		return
	}
	if err != nil {
		c.span.RecordError(err)
		c.span.SetStatus(codes.Error, reason)
	} else if reason != "" {
		c.span.AddEvent("flight." + reason)
	}
	c.span.End()
	c.span = nil
	c.flightCtx = context.Background()
}
