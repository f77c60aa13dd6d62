package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/signalsfoundry/flightpath-simulator/model"
)

// FlightCollector bundles Prometheus metrics for the flight engine. It
// satisfies core.FlightMetricsRecorder so a FlightController can drive it
// directly from its tick loop.
type FlightCollector struct {
	gatherer prometheus.Gatherer

	Ticks            prometheus.Counter
	SegmentsPlanned  prometheus.Counter
	SegmentDurations prometheus.Histogram
	Transitions      *prometheus.CounterVec
	PositionUpdates  *prometheus.CounterVec
	ActiveFlights    prometheus.Gauge
}

// NewFlightCollector registers flight metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewFlightCollector(reg prometheus.Registerer) (*FlightCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flight_ticks_total",
		Help: "Frames processed while a flight was flying.",
	}), "flight_ticks_total")
	if err != nil {
		return nil, err
	}

	segments, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flight_segments_planned_total",
		Help: "Segments planned between the vehicle and its next waypoint.",
	}), "flight_segments_planned_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flight_segment_duration_seconds",
		Help:    "Planned duration of each flight segment in seconds.",
		Buckets: []float64{0, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
	}), "flight_segment_duration_seconds")
	if err != nil {
		return nil, err
	}

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flight_status_transitions_total",
		Help: "Flight status changes, labeled by new status and reason.",
	}, []string{"status", "reason"})
	transitions, err = registerCounterVec(reg, transitions, "flight_status_transitions_total")
	if err != nil {
		return nil, err
	}

	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flight_position_updates_total",
		Help: "Computed positions, labeled by whether they were published or coalesced.",
	}, []string{"result"})
	updates, err = registerCounterVec(reg, updates, "flight_position_updates_total")
	if err != nil {
		return nil, err
	}

	active, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flight_active",
		Help: "Number of flights currently flying.",
	}), "flight_active")
	if err != nil {
		return nil, err
	}

	return &FlightCollector{
		gatherer:         gatherer,
		Ticks:            ticks,
		SegmentsPlanned:  segments,
		SegmentDurations: durations,
		Transitions:      transitions,
		PositionUpdates:  updates,
		ActiveFlights:    active,
	}, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *FlightCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func (c *FlightCollector) ObserveTick() {
	if c == nil || c.Ticks == nil {
		return
	}
	c.Ticks.Inc()
}

func (c *FlightCollector) ObserveSegment(plan model.SegmentPlan) {
	if c == nil {
		return
	}
	if c.SegmentsPlanned != nil {
		c.SegmentsPlanned.Inc()
	}
	if c.SegmentDurations != nil {
		c.SegmentDurations.Observe(plan.Duration().Seconds())
	}
}

// ObserveTransition counts the transition and keeps the active gauge in
// step with flights entering and leaving the flying state.
func (c *FlightCollector) ObserveTransition(from, to model.Status, reason string) {
	if c == nil {
		return
	}
	if c.Transitions != nil {
		if reason == "" {
			reason = "none"
		}
		c.Transitions.WithLabelValues(to.String(), reason).Inc()
	}
	if c.ActiveFlights == nil {
		return
	}
	switch {
	case from != model.StatusFlying && to == model.StatusFlying:
		c.ActiveFlights.Inc()
	case from == model.StatusFlying && to != model.StatusFlying:
		c.ActiveFlights.Dec()
	}
}

func (c *FlightCollector) ObservePublish(published bool) {
	if c == nil || c.PositionUpdates == nil {
		return
	}
	result := "coalesced"
	if published {
		result = "published"
	}
	c.PositionUpdates.WithLabelValues(result).Inc()
}
