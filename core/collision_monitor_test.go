package core

import (
	"math"
	"testing"

	"github.com/signalsfoundry/flightpath-simulator/model"
)

func TestCollisionMonitor_Check(t *testing.T) {
	m := &CollisionMonitor{Tolerance: DefaultClearanceTolerance}
	cases := []struct {
		name      string
		clearance float64
		ok        bool
		want      bool
	}{
		{"well above ground", 30, true, false},
		{"touching", 0, true, false},
		{"inside tolerance", -0.1, true, false},
		{"at tolerance", -0.2, true, false},
		{"below tolerance", -0.3, true, true},
		{"no data", -100, false, false},
		{"nan sample", math.NaN(), true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Check(model.GeoPosition{}, tc.clearance, tc.ok); got != tc.want {
				t.Fatalf("Check(%v, %v) = %v, want %v", tc.clearance, tc.ok, got, tc.want)
			}
		})
	}
}

func TestCollisionMonitor_SampleProviders(t *testing.T) {
	m := &CollisionMonitor{Tolerance: DefaultClearanceTolerance}
	pos := model.GeoPosition{Altitude: 10}

	if abort, _, ok := m.Sample(nil, pos); abort || ok {
		t.Fatalf("nil provider must never abort")
	}
	if abort, _, ok := m.Sample(NoClearanceData, pos); abort || ok {
		t.Fatalf("NoClearanceData must never abort")
	}

	terrainAt15 := GroundClearanceFunc(func(p model.GeoPosition) (float64, bool) {
		return p.Altitude - 15, true
	})
	abort, clearance, ok := m.Sample(terrainAt15, pos)
	if !abort || !ok || clearance != -5 {
		t.Fatalf("Sample = (%v, %v, %v), want abort with clearance -5", abort, clearance, ok)
	}
}
