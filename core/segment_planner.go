package core

import (
	"fmt"
	"math"

	"github.com/signalsfoundry/flightpath-simulator/model"
)

// Default vehicle speeds in metres per second.
const (
	DefaultHorizontalSpeedMps = 5.0
	DefaultVerticalSpeedMps   = 5.0
)

// SegmentPlanner computes the kinematics of a single leg. Horizontal and
// vertical motion share one duration so both axes arrive together.
type SegmentPlanner struct {
	HorizontalSpeedMps float64
	VerticalSpeedMps   float64
}

func NewSegmentPlanner() *SegmentPlanner {
	return &SegmentPlanner{
		HorizontalSpeedMps: DefaultHorizontalSpeedMps,
		VerticalSpeedMps:   DefaultVerticalSpeedMps,
	}
}

// Plan builds the SegmentPlan from start towards target. The target
// heading points from target to lookahead, so the vehicle is already
// turning into its next leg while it flies this one. Without a usable
// lookahead the start heading is kept.
//
// Non-finite inputs are reported as *InvalidWaypointError with Index -1
// for start, 0 for target and 1 for lookahead.
func (sp *SegmentPlanner) Plan(start model.GeoPosition, target model.Waypoint, lookahead *model.Waypoint) (model.SegmentPlan, error) {
	if sp.HorizontalSpeedMps <= 0 || sp.VerticalSpeedMps <= 0 {
		return model.SegmentPlan{}, fmt.Errorf("segment planner speeds must be positive (horizontal=%v, vertical=%v)",
			sp.HorizontalSpeedMps, sp.VerticalSpeedMps)
	}
	if err := checkCoords(InitialStateIndex, start.Lat, start.Lng, start.Altitude); err != nil {
		return model.SegmentPlan{}, err
	}
	if err := checkCoords(0, target.Lat, target.Lng, target.Altitude); err != nil {
		return model.SegmentPlan{}, err
	}

	start.Heading = NormalizeAngle(start.Heading)

	horizontal := DistanceMeters(start, target)
	vertical := math.Abs(target.Altitude - start.Altitude)
	seconds := math.Max(horizontal/sp.HorizontalSpeedMps, vertical/sp.VerticalSpeedMps)

	targetHeading := start.Heading
	if lookahead != nil && (lookahead.Lat != target.Lat || lookahead.Lng != target.Lng) {
		if err := checkCoords(1, lookahead.Lat, lookahead.Lng, lookahead.Altitude); err != nil {
			return model.SegmentPlan{}, err
		}
		targetHeading = BearingDegrees(target, *lookahead)
	}

	return model.SegmentPlan{
		Start:         start,
		End:           target.Position(targetHeading),
		TargetHeading: targetHeading,
		HeadingDelta:  ShortestDelta(start.Heading, targetHeading),
		DurationMs:    seconds * 1000,
	}, nil
}
