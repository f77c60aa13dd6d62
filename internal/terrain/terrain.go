// Package terrain provides ground-clearance providers for the flight
// engine: simple elevation models, a cached elevation lookup and a
// sampler that turns stale readings into "no data".
package terrain

import (
	"math"

	"github.com/signalsfoundry/flightpath-simulator/core"
	"github.com/signalsfoundry/flightpath-simulator/model"
)

const metersPerDegLat = 111_320.0

// ElevationSource reports terrain elevation (metres above the datum) at a
// horizontal position. ok is false where the source has no coverage.
type ElevationSource interface {
	ElevationAt(lat, lng float64) (elevation float64, ok bool)
}

// Flat is terrain at a constant elevation.
type Flat struct {
	ElevationM float64
}

func (f Flat) ElevationAt(lat, lng float64) (float64, bool) {
	return f.ElevationM, true
}

// Synthetic is a deterministic wavy terrain for previews and tests. It can
// be replaced with real elevation data behind the same interface.
type Synthetic struct {
	BaseM       float64
	AmplitudeM  float64
	WavelengthM float64
}

// DefaultSynthetic returns gentle hills around sea level.
func DefaultSynthetic() Synthetic {
	return Synthetic{BaseM: 0, AmplitudeM: 20, WavelengthM: 1000}
}

func (s Synthetic) ElevationAt(lat, lng float64) (float64, bool) {
	if s.WavelengthM <= 0 {
		return s.BaseM, true
	}
	// local east/north metres on a flat projection
	x := lng * metersPerDegLat * math.Cos(lat*math.Pi/180)
	y := lat * metersPerDegLat
	wave1 := math.Sin(x/s.WavelengthM) * s.AmplitudeM
	wave2 := math.Sin((x+y)/(s.WavelengthM/2)) * s.AmplitudeM / 2
	return s.BaseM + wave1 + wave2, true
}

// Clearance converts an ElevationSource into a ground-clearance provider:
// clearance is the vehicle altitude minus the terrain elevation below it.
type Clearance struct {
	Source ElevationSource
}

var _ core.GroundClearanceProvider = Clearance{}

func (c Clearance) GroundClearance(pos model.GeoPosition) (float64, bool) {
	if c.Source == nil {
		return 0, false
	}
	elev, ok := c.Source.ElevationAt(pos.Lat, pos.Lng)
	if !ok || math.IsNaN(elev) || math.IsNaN(pos.Altitude) {
		return 0, false
	}
	return pos.Altitude - elev, true
}
