package core

import (
	"time"

	"github.com/signalsfoundry/flightpath-simulator/model"
)

// DefaultPublishInterval bounds how often positions leave the engine.
const DefaultPublishInterval = 40 * time.Millisecond

// PositionSink rate-limits outgoing position updates. Every tick offers a
// fresh position; the sink forwards it only when MinInterval has passed
// since the last forwarded one and drops the rest, so the consumer always
// sees the newest frame available at publish time.
type PositionSink struct {
	MinInterval time.Duration

	publish     func(model.GeoPosition)
	lastPublish time.Time
	published   bool

	Published uint64
	Coalesced uint64
}

// NewPositionSink forwards to publish, which may be nil.
func NewPositionSink(minInterval time.Duration, publish func(model.GeoPosition)) *PositionSink {
	return &PositionSink{MinInterval: minInterval, publish: publish}
}

// Offer forwards pos if the interval has elapsed and reports whether it
// did.
func (s *PositionSink) Offer(pos model.GeoPosition, now time.Time) bool {
	if s.published && now.Sub(s.lastPublish) < s.MinInterval {
		s.Coalesced++
		return false
	}
	s.emit(pos, now)
	return true
}

// Flush forwards pos regardless of the interval.
func (s *PositionSink) Flush(pos model.GeoPosition, now time.Time) {
	s.emit(pos, now)
}

// Reset forgets the last publish time so the next Offer goes out.
func (s *PositionSink) Reset() {
	s.published = false
	s.lastPublish = time.Time{}
}

func (s *PositionSink) emit(pos model.GeoPosition, now time.Time) {
	s.lastPublish = now
	s.published = true
	s.Published++
	if s.publish != nil {
		s.publish(pos)
	}
}
