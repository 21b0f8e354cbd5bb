package testutil

import (
	"context"

	"github.com/Agrid-Dev/setback-advisor/internal/setback"
	"github.com/Agrid-Dev/setback-advisor/internal/site"
)

// FakeSiteService is a reusable fake implementing ports.SiteService.
// Put ONLY what multiple test packages need here.
type FakeSiteService struct {
	S site.Snapshot

	SetOutdoorCalled bool
	SetOutdoorArg    float64
	SetOutdoorErr    error

	SetDesiredCalled bool
	SetDesiredArg    float64
	SetDesiredErr    error

	SetAbsenceCalled bool
	SetAbsenceArg    float64
	SetAbsenceErr    error

	SetDaysCalled bool
	SetDaysArg    int
	SetDaysErr    error
}

func NewFakeSiteService() *FakeSiteService {
	return &FakeSiteService{
		S: site.Snapshot{
			SiteID:               "default",
			OutdoorTempF:         85,
			DesiredTempF:         72,
			DesiredMinF:          site.DefaultDesiredMinF,
			DesiredMaxF:          site.DefaultDesiredMaxF,
			AbsenceDurationHours: 8,
			DaysPerWeek:          5,
			Result: setback.Result{
				Action:                   setback.ActionSetback,
				SetbackTempF:             80,
				DesiredTempF:             72,
				OutdoorTempF:             85,
				RecoveryTimeMinutes:      34.77,
				ThermalTimeConstantHours: 3.81,
				BreakEvenTimeHours:       4.21,
				BreakEvenFound:           true,
				SavingsPerDayUSD:         0.1658,
				PercentSaved:             9.56,
			},
		},
	}
}

func (f *FakeSiteService) Get() site.Snapshot { return f.S }

func (f *FakeSiteService) SetOutdoorTemperature(v float64) error {
	f.SetOutdoorCalled = true
	f.SetOutdoorArg = v
	if f.SetOutdoorErr != nil {
		return f.SetOutdoorErr
	}
	f.S.OutdoorTempF = v
	return nil
}

func (f *FakeSiteService) SetDesiredTemperature(v float64) error {
	f.SetDesiredCalled = true
	f.SetDesiredArg = v
	if f.SetDesiredErr != nil {
		return f.SetDesiredErr
	}
	f.S.DesiredTempF = v
	return nil
}

func (f *FakeSiteService) SetAbsenceDuration(h float64) error {
	f.SetAbsenceCalled = true
	f.SetAbsenceArg = h
	if f.SetAbsenceErr != nil {
		return f.SetAbsenceErr
	}
	f.S.AbsenceDurationHours = h
	return nil
}

func (f *FakeSiteService) SetDaysPerWeek(n int) error {
	f.SetDaysCalled = true
	f.SetDaysArg = n
	if f.SetDaysErr != nil {
		return f.SetDaysErr
	}
	f.S.DaysPerWeek = n
	return nil
}

// FakeCalculator implements ports.Calculator. With neither Result nor Err
// set it runs the real engine under the default policy.
type FakeCalculator struct {
	Calls   int
	LastReq setback.Request
	Result  *setback.Result
	Err     error
}

func (f *FakeCalculator) Calculate(_ context.Context, req setback.Request) (setback.Result, error) {
	f.Calls++
	f.LastReq = req
	if f.Err != nil {
		return setback.Result{}, f.Err
	}
	if f.Result != nil {
		return *f.Result, nil
	}
	e, err := setback.NewEngine(setback.DefaultPolicy())
	if err != nil {
		return setback.Result{}, err
	}
	return e.Calculate(req)
}
