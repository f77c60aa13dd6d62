package core

import "fmt"

// EmptyRouteError is returned by FlightController.Start when the route has
// no waypoints.
type EmptyRouteError struct{}

func (*EmptyRouteError) Error() string {
	return "route has no waypoints"
}

// InitialStateIndex is the InvalidWaypointError index used for the
// vehicle's initial state.
const InitialStateIndex = -1

// InvalidWaypointError reports a non-finite coordinate in the route or in
// the initial vehicle state.
type InvalidWaypointError struct {
	Index int
	Field string
	Value float64
}

func (e *InvalidWaypointError) Error() string {
	if e.Index == InitialStateIndex {
		return fmt.Sprintf("initial state has non-finite %s (%v)", e.Field, e.Value)
	}
	return fmt.Sprintf("waypoint %d has non-finite %s (%v)", e.Index, e.Field, e.Value)
}
