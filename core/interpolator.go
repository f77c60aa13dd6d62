package core

import "github.com/signalsfoundry/flightpath-simulator/model"

// Interpolate returns the position reached elapsedMs into the segment and
// the progress fraction t in [0, 1]. A zero-length segment is complete on
// the first call.
func Interpolate(plan model.SegmentPlan, elapsedMs float64) (model.GeoPosition, float64) {
	t := 1.0
	if plan.DurationMs > 0 {
		t = clamp01(elapsedMs / plan.DurationMs)
	}

	a, b := plan.Start, plan.End
	return model.GeoPosition{
		Lat:      lerp(a.Lat, b.Lat, t),
		Lng:      lerp(a.Lng, b.Lng, t),
		Altitude: lerp(a.Altitude, b.Altitude, t),
		Heading:  NormalizeAngle(a.Heading + plan.HeadingDelta*t),
	}, t
}

// lerp is exact at both ends: t==1 yields b bit for bit.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func clamp01(v float64) float64 {
	switch {
	case v != v: // NaN
		return 0
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
