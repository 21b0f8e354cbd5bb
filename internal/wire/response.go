package wire

import (
	"errors"
	"math"
	"net/http"

	"github.com/Agrid-Dev/setback-advisor/internal/setback"
)

type ThermalDTO struct {
	ConductanceBTUhF  float64          `json:"uaBtuPerHourF"`
	CapacitanceBTUF   float64          `json:"capacitanceBtuPerF"`
	UnclampedTauHours float64          `json:"unclampedTimeConstant"`
	Clamped           bool             `json:"tauClamped"`
	Envelope          setback.Envelope `json:"envelope"`
}

type ResultDTO struct {
	Action              string  `json:"action"`
	SetbackTemp         float64 `json:"setbackTemp"`
	DesiredTemp         float64 `json:"desiredTemp"`
	OutdoorTemp         float64 `json:"outdoorTemp"`
	RestartTime         string  `json:"restartTime"`
	ReturnTime          string  `json:"returnTime"`
	RecoveryTime        int     `json:"recoveryTime"`
	ThermalTimeConstant float64 `json:"thermalTimeConstant"`
	BreakEvenTime       float64 `json:"breakEvenTime"`
	BreakEvenFound      bool    `json:"breakEvenFound"`
	SavingsPerDay       float64 `json:"savingsPerDay"`
	SavingsPerMonth     float64 `json:"savingsPerMonth"`
	SavingsPerYear      float64 `json:"savingsPerYear"`
	EnergySavedKwh      float64 `json:"energySavedKwh"`
	PercentSaved        float64 `json:"percentSaved"`
	RateUSDPerKWh       float64 `json:"electricityRate"`
	RateSource          string  `json:"rateSource"`

	Comparison setback.Comparison `json:"comparison"`
	Thermal    ThermalDTO         `json:"thermal"`
	Warnings   []string           `json:"warnings"`

	Eligibility *EligibilityDTO `json:"eligibility,omitempty"`
}

// FromResult rounds the engine result for display.
func FromResult(r setback.Result) ResultDTO {
	warnings := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		warnings[i] = string(w)
	}
	return ResultDTO{
		Action:              r.Action.String(),
		SetbackTemp:         round(r.SetbackTempF, 1),
		DesiredTemp:         r.DesiredTempF,
		OutdoorTemp:         r.OutdoorTempF,
		RestartTime:         FormatClock(r.RestartTime),
		ReturnTime:          FormatClock(r.ReturnTime),
		RecoveryTime:        int(math.Round(r.RecoveryTimeMinutes)),
		ThermalTimeConstant: round(r.ThermalTimeConstantHours, 2),
		BreakEvenTime:       round(r.BreakEvenTimeHours, 2),
		BreakEvenFound:      r.BreakEvenFound,
		SavingsPerDay:       round(r.SavingsPerDayUSD, 2),
		SavingsPerMonth:     round(r.SavingsPerMonthUSD, 2),
		SavingsPerYear:      round(r.SavingsPerYearUSD, 2),
		EnergySavedKwh:      round(r.EnergySavedKWhPerDay, 2),
		PercentSaved:        round(r.PercentSaved, 1),
		RateUSDPerKWh:       round(r.RateUSDPerKWh, 4),
		RateSource:          string(r.RateSource),
		Comparison: setback.Comparison{
			Maintain: roundPeriod(r.Comparison.Maintain),
			Setback:  roundPeriod(r.Comparison.Setback),
			Savings:  roundPeriod(r.Comparison.Savings),
		},
		Thermal: ThermalDTO{
			ConductanceBTUhF:  round(r.Thermal.ConductanceBTUhF, 2),
			CapacitanceBTUF:   round(r.Thermal.CapacitanceBTUF, 1),
			UnclampedTauHours: round(r.Thermal.UnclampedTauHours, 2),
			Clamped:           r.Thermal.Clamped,
			Envelope:          r.Thermal.Envelope,
		},
		Warnings: warnings,
	}
}

func roundPeriod(p setback.Period) setback.Period {
	return setback.Period{
		KWhPerDay:    round(p.KWhPerDay, 2),
		CostPerDay:   round(p.CostPerDay, 2),
		CostPerMonth: round(p.CostPerMonth, 2),
		CostPerYear:  round(p.CostPerYear, 2),
	}
}

func round(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Round(v*f) / f
}

type ErrorDTO struct {
	Kind    string `json:"kind"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Response is the envelope every calculation reply uses.
type Response struct {
	Success bool       `json:"success"`
	Data    *ResultDTO `json:"data,omitempty"`
	Error   *ErrorDTO  `json:"error,omitempty"`
}

func Success(r setback.Result) Response {
	dto := FromResult(r)
	return Response{Success: true, Data: &dto}
}

func Failure(err error) Response {
	e := &ErrorDTO{Kind: setback.ErrorKind(err), Message: err.Error()}
	var ipe *setback.InvalidProfileError
	if errors.As(err, &ipe) {
		e.Field = ipe.Field
	}
	return Response{Error: e}
}

// EncodingFailure is the reply sent when a response could not be marshalled.
func EncodingFailure(err error) Response {
	return Response{Error: &ErrorDTO{Kind: "internal", Message: "response encoding failed: " + err.Error()}}
}

// StatusFor maps calculation errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, setback.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, setback.ErrPhysicallyInfeasible):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
