package terrain

import (
	"math"
	"sync"
	"time"

	"github.com/signalsfoundry/flightpath-simulator/core"
	"github.com/signalsfoundry/flightpath-simulator/model"
	"github.com/signalsfoundry/flightpath-simulator/timectrl"
)

// Sampler holds the most recent ground-clearance reading produced by a
// terrain subsystem running at its own cadence. A reading older than
// MaxAge, or no reading at all, is reported as "no data".
//
// Update and Refresh may be called from a different goroutine than the
// one reading GroundClearance.
type Sampler struct {
	Source core.GroundClearanceProvider
	MaxAge time.Duration

	clock timectrl.SimClock

	mu        sync.Mutex
	clearance float64
	sampledAt time.Time
	valid     bool
}

// NewSampler creates a sampler reading time from clock. source may be nil
// when readings are pushed through Update.
func NewSampler(clock timectrl.SimClock, source core.GroundClearanceProvider, maxAge time.Duration) *Sampler {
	return &Sampler{Source: source, MaxAge: maxAge, clock: clock}
}

// Update records an externally computed clearance.
func (s *Sampler) Update(clearance float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if math.IsNaN(clearance) {
		s.valid = false
		return
	}
	s.clearance = clearance
	s.sampledAt = s.clock.Now()
	s.valid = true
}

// Refresh reads Source at pos and records the result. A missing reading
// invalidates the previous one.
func (s *Sampler) Refresh(pos model.GeoPosition) {
	if s.Source == nil {
		return
	}
	clearance, ok := s.Source.GroundClearance(pos)
	if !ok {
		s.Invalidate()
		return
	}
	s.Update(clearance)
}

// Invalidate discards the current reading.
func (s *Sampler) Invalidate() {
	s.mu.Lock()
	s.valid = false
	s.mu.Unlock()
}

// GroundClearance returns the last reading if it is fresh. pos is ignored;
// the reading already belongs to the vehicle's recent position.
func (s *Sampler) GroundClearance(model.GeoPosition) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.valid {
		return 0, false
	}
	if s.MaxAge > 0 && s.clock.Now().Sub(s.sampledAt) > s.MaxAge {
		return 0, false
	}
	return s.clearance, true
}
