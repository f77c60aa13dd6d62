package core

import "math"

// EarthRadiusM is the mean Earth radius used for all great-circle
// calculations (metres).
const EarthRadiusM = 6371000.0

// LatLng is anything with a latitude and longitude in degrees.
type LatLng interface {
	LatDeg() float64
	LngDeg() float64
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// DistanceMeters returns the haversine great-circle distance between a
// and b.
func DistanceMeters(a, b LatLng) float64 {
	lat1 := radians(a.LatDeg())
	lat2 := radians(b.LatDeg())
	dLat := lat2 - lat1
	dLng := radians(b.LngDeg() - a.LngDeg())

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Rounding can push h just outside [0, 1] for near-antipodal points.
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

// BearingDegrees returns the heading from a to b in [0, 360).
//
// The longitude difference drives x and the latitude difference drives y,
// so 0 is north and 90 is east in the planar degree grid. This is the map
// heading convention used for the vehicle model, not the great-circle
// initial bearing.
func BearingDegrees(a, b LatLng) float64 {
	dLng := b.LngDeg() - a.LngDeg()
	dLat := b.LatDeg() - a.LatDeg()
	return NormalizeAngle(degrees(math.Atan2(dLng, dLat)))
}

// NormalizeAngle maps any angle in degrees into [0, 360).
func NormalizeAngle(deg float64) float64 {
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	// Mod of a tiny negative value can round up to exactly 360.
	if a >= 360 {
		a = 0
	}
	return a
}

// ShortestDelta returns the signed rotation in [-180, 180] that turns
// from onto to along the shorter arc. Positive is clockwise.
func ShortestDelta(from, to float64) float64 {
	d := NormalizeAngle(to - from)
	if d > 180 {
		d -= 360
	}
	return d
}
