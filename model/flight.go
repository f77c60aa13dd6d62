package model

import (
	"fmt"
	"time"
)

// GeoPosition is a vehicle position on the WGS84 sphere. Lat/Lng are
// degrees, Altitude is metres and Heading is degrees clockwise from north.
type GeoPosition struct {
	Lat      float64 `json:"lat" yaml:"lat"`
	Lng      float64 `json:"lng" yaml:"lng"`
	Altitude float64 `json:"altitude" yaml:"altitude"`
	Heading  float64 `json:"heading" yaml:"heading"`
}

// LatDeg and LngDeg satisfy the geodesy helpers' LatLng interface.
func (p GeoPosition) LatDeg() float64 { return p.Lat }
func (p GeoPosition) LngDeg() float64 { return p.Lng }

func (p GeoPosition) String() string {
	return fmt.Sprintf("(%.6f, %.6f) alt=%.1fm hdg=%.1f", p.Lat, p.Lng, p.Altitude, p.Heading)
}

// Waypoint is a target the vehicle should reach. Only the coordinates and
// altitude are meaningful; heading is derived while flying.
type Waypoint struct {
	Lat      float64 `json:"lat" yaml:"lat"`
	Lng      float64 `json:"lng" yaml:"lng"`
	Altitude float64 `json:"altitude" yaml:"altitude"`
}

func (w Waypoint) LatDeg() float64 { return w.Lat }
func (w Waypoint) LngDeg() float64 { return w.Lng }

// Position returns the waypoint as a GeoPosition with the given heading.
func (w Waypoint) Position(heading float64) GeoPosition {
	return GeoPosition{Lat: w.Lat, Lng: w.Lng, Altitude: w.Altitude, Heading: heading}
}

// SegmentPlan holds the kinematics of one leg between the vehicle's
// position and its next waypoint. A plan is computed once when the leg
// begins and never modified.
type SegmentPlan struct {
	Start         GeoPosition
	End           GeoPosition
	TargetHeading float64
	// HeadingDelta is the signed shortest rotation in [-180, 180].
	HeadingDelta float64
	DurationMs   float64
}

// Duration returns DurationMs as a time.Duration.
func (p SegmentPlan) Duration() time.Duration {
	return time.Duration(p.DurationMs * float64(time.Millisecond))
}

// Status is the lifecycle state of a simulated flight.
type Status int

const (
	StatusIdle Status = iota
	StatusFlying
	StatusCompleted
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusFlying:
		return "flying"
	case StatusCompleted:
		return "completed"
	case StatusAborted:
		return "aborted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether the status ends a flight.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

// Reasons attached to status changes.
const (
	ReasonGroundProximity = "ground-proximity"
	ReasonInvalidWaypoint = "invalid-waypoint"
	ReasonCancelled       = "cancelled"
	ReasonEmptyRoute      = "empty-route"
)

// FlightState is the mutable state of one flight. It is owned by the
// flight controller; everything else sees copies.
type FlightState struct {
	Position      GeoPosition
	WaypointIndex int
	Status        Status
	Reason        string

	// CurrentPlan is nil between segments.
	CurrentPlan  *SegmentPlan
	SegmentStart time.Time
}
