package setback

import (
	"errors"
	"math"
	"reflect"
	"sync"
	"testing"
)

func TestCalculateReferenceHome(t *testing.T) {
	res := mustCalculate(t, newTestEngine(t), newTestRequest())

	if res.Action != ActionSetback {
		t.Fatalf("action=%s, want SETBACK", res.Action)
	}
	if res.ThermalTimeConstantHours < 2 || res.ThermalTimeConstantHours > 6 {
		t.Errorf("tau=%v, want within [2, 6]", res.ThermalTimeConstantHours)
	}
	if !res.BreakEvenFound || res.BreakEvenTimeHours >= 8 {
		t.Errorf("break-even=%v (found=%v), want < 8", res.BreakEvenTimeHours, res.BreakEvenFound)
	}
	if res.SavingsPerDayUSD <= 0 {
		t.Errorf("savings/day=%v, want > 0", res.SavingsPerDayUSD)
	}
	if res.SetbackTempF <= res.DesiredTempF || res.SetbackTempF > res.OutdoorTempF {
		t.Errorf("setback=%v outside (%v, %v]", res.SetbackTempF, res.DesiredTempF, res.OutdoorTempF)
	}
	if !almostEqual(res.SetbackTempF, 80, 0.05) {
		t.Errorf("setback=%v, want ~80", res.SetbackTempF)
	}
	if !almostEqual(res.RecoveryTimeMinutes, 34.77, 0.5) {
		t.Errorf("recovery=%v min, want ~34.77", res.RecoveryTimeMinutes)
	}
	if !res.RestartTime.Before(res.ReturnTime) {
		t.Errorf("restart %v should precede return %v", res.RestartTime, res.ReturnTime)
	}
}

func TestCalculateShortAbsenceMaintains(t *testing.T) {
	res := mustCalculate(t, newTestEngine(t), newTestRequest(func(r *Request) {
		r.Schedule.AbsenceDurationHours = 1
	}))
	if res.Action != ActionMaintain {
		t.Fatalf("action=%s, want MAINTAIN", res.Action)
	}
	if res.SetbackTempF != res.DesiredTempF || res.SavingsPerDayUSD != 0 {
		t.Fatalf("maintain result holds desired with no savings, got %+v", res)
	}
}

func TestCalculateInsulationRaisesBreakEven(t *testing.T) {
	e := newTestEngine(t)
	avg := mustCalculate(t, e, newTestRequest())
	exc := mustCalculate(t, e, newTestRequest(func(r *Request) {
		r.Profile.InsulationQuality = InsulationExcellent
	}))
	if exc.BreakEvenTimeHours <= avg.BreakEvenTimeHours {
		t.Fatalf("excellent break-even %v should exceed average %v", exc.BreakEvenTimeHours, avg.BreakEvenTimeHours)
	}
	if exc.ThermalTimeConstantHours <= avg.ThermalTimeConstantHours {
		t.Fatalf("excellent tau %v should exceed average %v", exc.ThermalTimeConstantHours, avg.ThermalTimeConstantHours)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	e := newTestEngine(t)
	req := newTestRequest(func(r *Request) { r.Utility.MonthlyBillUSD = ptr(150.0) })
	first := mustCalculate(t, e, req)
	second := mustCalculate(t, e, req)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calculation differs:\n%+v\n%+v", first, second)
	}
}

func TestCalculateConcurrent(t *testing.T) {
	e := newTestEngine(t)
	want := mustCalculate(t, e, newTestRequest())

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := e.Calculate(newTestRequest())
			if err != nil {
				errs <- err
				return
			}
			if !reflect.DeepEqual(got, want) {
				errs <- errors.New("concurrent result differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestCalculateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"missing floor area", func(r *Request) { r.Profile.FloorAreaSqFt = 0 }, ErrInvalidProfile},
		{"zero absence", func(r *Request) { r.Schedule.AbsenceDurationHours = 0 }, ErrInvalidProfile},
		{"days per week out of range", func(r *Request) { r.Schedule.DaysPerWeek = 9 }, ErrInvalidProfile},
		{"negative rate", func(r *Request) { r.Utility.RateUSDPerKWh = ptr(-1.0) }, ErrInvalidProfile},
		{"infinite rate", func(r *Request) { r.Utility.RateUSDPerKWh = ptr(math.Inf(1)) }, ErrInvalidProfile},
		{"infinite bill", func(r *Request) { r.Utility.MonthlyBillUSD = ptr(math.Inf(1)) }, ErrInvalidProfile},
		{"infinite floor area", func(r *Request) { r.Profile.FloorAreaSqFt = math.Inf(1) }, ErrInvalidProfile},
		{"infinite ceiling height", func(r *Request) { r.Profile.CeilingHeightFt = math.Inf(1) }, ErrInvalidProfile},
		{"infinite wall area", func(r *Request) { r.Profile.WallAreaSqFt = ptr(math.Inf(1)) }, ErrInvalidProfile},
		{"infinite roof area", func(r *Request) { r.Profile.RoofAreaSqFt = ptr(math.Inf(1)) }, ErrInvalidProfile},
		{"desired below comfort range", func(r *Request) { r.Schedule.DesiredTempF = 40 }, ErrInvalidProfile},
		{"desired above comfort range", func(r *Request) { r.Schedule.DesiredTempF = 78.5 }, ErrInvalidProfile},
		{"desired NaN", func(r *Request) { r.Schedule.DesiredTempF = math.NaN() }, ErrInvalidProfile},
		{"heating season", func(r *Request) { r.Schedule.OutdoorTempF = 40 }, ErrPhysicallyInfeasible},
		{"undersized equipment", func(r *Request) {
			r.Profile.InsulationQuality = InsulationPoor
			r.Profile.WindowType = WindowSinglePane
			r.Profile.ConstructionEra = EraBefore1980
			r.Profile.HVACType = HVACWindowUnit
			r.Profile.HVACAgeBand = Age15Plus
			r.Schedule.OutdoorTempF = 110
		}, ErrPhysicallyInfeasible},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Calculate(newTestRequest(tt.mutate))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCalculateDesiredErrorNamesField(t *testing.T) {
	e := newTestEngine(t)
	for _, desired := range []float64{40, 64.9, 78.1} {
		_, err := e.Calculate(newTestRequest(func(r *Request) { r.Schedule.DesiredTempF = desired }))
		var ipe *InvalidProfileError
		if !errors.As(err, &ipe) || ipe.Field != "desiredTempF" {
			t.Fatalf("desired %v: expected desiredTempF error, got %v", desired, err)
		}
	}
	for _, desired := range []float64{DesiredTempMinF, DesiredTempMaxF} {
		if _, err := e.Calculate(newTestRequest(func(r *Request) {
			r.Schedule.DesiredTempF = desired
			r.Schedule.OutdoorTempF = 90
		})); err != nil {
			t.Fatalf("desired %v at the range edge should be accepted: %v", desired, err)
		}
	}
}

func TestScenarioCannotBypassDesiredRange(t *testing.T) {
	_, err := newTestEngine(t).Calculate(Scenario{DesiredTempF: ptr(50.0)}.Apply(newTestRequest()))
	if !errors.Is(err, ErrInvalidProfile) {
		t.Fatalf("expected ErrInvalidProfile, got %v", err)
	}
}

func TestCalculateMergesWarnings(t *testing.T) {
	res := mustCalculate(t, newTestEngine(t), newTestRequest(func(r *Request) {
		r.Schedule.AbsenceDurationHours = 0.05
	}))
	for _, w := range []Warning{WarningInsufficientTime, WarningRateDefaulted} {
		if !res.Warnings.Has(w) {
			t.Errorf("missing warning %q in %v", w, res.Warnings)
		}
	}
}

func TestScenarioApply(t *testing.T) {
	base := newTestRequest()
	q := InsulationGood
	got := Scenario{
		OutdoorTempF:         ptr(95.0),
		AbsenceDurationHours: ptr(10.0),
		InsulationQuality:    &q,
	}.Apply(base)

	if got.Schedule.OutdoorTempF != 95 || got.Schedule.AbsenceDurationHours != 10 {
		t.Fatalf("schedule overrides not applied: %+v", got.Schedule)
	}
	if got.Profile.InsulationQuality != InsulationGood {
		t.Fatalf("insulation override not applied")
	}
	if got.Schedule.DesiredTempF != base.Schedule.DesiredTempF || got.Profile.FloorAreaSqFt != base.Profile.FloorAreaSqFt {
		t.Fatalf("untouched fields changed")
	}
	if base.Schedule.OutdoorTempF != 85 {
		t.Fatalf("Apply mutated the base request")
	}

	if _, err := newTestEngine(t).Calculate(got); err != nil {
		t.Fatalf("Calculate(scenario) failed: %v", err)
	}
}
