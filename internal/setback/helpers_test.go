package setback

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func ptr[T any](v T) *T { return &v }

var testAbsenceStart = time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)

func newTestProfile(opts ...func(*BuildingProfile)) BuildingProfile {
	p := BuildingProfile{
		FloorAreaSqFt:     2000,
		CeilingHeightFt:   8,
		HomeType:          HomeSingleFamily,
		ConstructionType:  ConstructionWoodFrame,
		ConstructionEra:   Era1980To2000,
		InsulationQuality: InsulationAverage,
		WindowType:        WindowDoublePane,
		HVACType:          HVACCentralAC,
		HVACAgeBand:       Age5To10,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func newTestRequest(opts ...func(*Request)) Request {
	r := Request{
		Profile: newTestProfile(),
		Schedule: Schedule{
			OutdoorTempF:         85,
			DesiredTempF:         72,
			AbsenceDurationHours: 8,
			AbsenceStart:         testAbsenceStart,
			DaysPerWeek:          5,
		},
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultPolicy())
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}
	return e
}

func mustCalculate(t *testing.T, e *Engine, req Request) Result {
	t.Helper()
	res, err := e.Calculate(req)
	if err != nil {
		t.Fatalf("Calculate() failed: %v", err)
	}
	return res
}

func mustThermal(t *testing.T, p BuildingProfile) ThermalParameters {
	t.Helper()
	tp, err := BuildThermalParameters(p, DefaultPolicy())
	if err != nil {
		t.Fatalf("BuildThermalParameters() failed: %v", err)
	}
	return tp
}

func strategyInputFor(t *testing.T, req Request) StrategyInput {
	t.Helper()
	return StrategyInput{
		Thermal:              mustThermal(t, req.Profile),
		DesiredTempF:         req.Schedule.DesiredTempF,
		OutdoorTempF:         req.Schedule.OutdoorTempF,
		AbsenceDurationHours: req.Schedule.AbsenceDurationHours,
		AbsenceStart:         req.Schedule.AbsenceStart,
		FloorAreaSqFt:        req.Profile.FloorAreaSqFt,
		HVACType:             req.Profile.HVACType,
		HVACAgeBand:          req.Profile.HVACAgeBand,
	}
}
