package core

import (
	"math"

	"go.uber.org/multierr"

	"github.com/signalsfoundry/flightpath-simulator/model"
)

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func checkCoords(index int, lat, lng, alt float64) error {
	var err error
	if !finite(lat) {
		err = multierr.Append(err, &InvalidWaypointError{Index: index, Field: "lat", Value: lat})
	}
	if !finite(lng) {
		err = multierr.Append(err, &InvalidWaypointError{Index: index, Field: "lng", Value: lng})
	}
	if !finite(alt) {
		err = multierr.Append(err, &InvalidWaypointError{Index: index, Field: "altitude", Value: alt})
	}
	return err
}

// ValidateRoute checks the initial state and every waypoint for
// non-finite coordinates. All offending fields are reported; use
// multierr.Errors or errors.As to inspect them.
func ValidateRoute(waypoints []model.Waypoint, initial model.GeoPosition) error {
	err := checkCoords(InitialStateIndex, initial.Lat, initial.Lng, initial.Altitude)
	if !finite(initial.Heading) {
		err = multierr.Append(err, &InvalidWaypointError{Index: InitialStateIndex, Field: "heading", Value: initial.Heading})
	}
	for i, wp := range waypoints {
		err = multierr.Append(err, checkCoords(i, wp.Lat, wp.Lng, wp.Altitude))
	}
	return err
}
