package core

import (
	"math"

	"github.com/signalsfoundry/flightpath-simulator/model"
)

// DefaultClearanceTolerance absorbs floating-point jitter around true
// ground contact (metres).
const DefaultClearanceTolerance = 0.2

// GroundClearanceProvider supplies the vehicle's height above local
// terrain. ok is false when no sample is available; callers must treat
// that as "no data", never as zero clearance.
type GroundClearanceProvider interface {
	GroundClearance(pos model.GeoPosition) (clearance float64, ok bool)
}

// GroundClearanceFunc adapts a function to GroundClearanceProvider.
type GroundClearanceFunc func(pos model.GeoPosition) (float64, bool)

func (f GroundClearanceFunc) GroundClearance(pos model.GeoPosition) (float64, bool) {
	return f(pos)
}

// NoClearanceData is a provider that never has a sample.
var NoClearanceData GroundClearanceProvider = GroundClearanceFunc(func(model.GeoPosition) (float64, bool) {
	return 0, false
})

// CollisionMonitor decides whether a clearance sample requires an abort.
type CollisionMonitor struct {
	Tolerance float64
}

// Check returns true when the vehicle at pos is below ground by more than
// the tolerance. A missing or NaN sample never aborts.
func (m *CollisionMonitor) Check(pos model.GeoPosition, clearance float64, ok bool) bool {
	if !ok || math.IsNaN(clearance) {
		return false
	}
	return clearance < -m.Tolerance
}

// Sample reads the provider and checks the result in one step.
func (m *CollisionMonitor) Sample(provider GroundClearanceProvider, pos model.GeoPosition) (abort bool, clearance float64, ok bool) {
	if provider == nil {
		return false, 0, false
	}
	clearance, ok = provider.GroundClearance(pos)
	return m.Check(pos, clearance, ok), clearance, ok
}
