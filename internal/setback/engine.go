package setback

import "time"

// Result is the full recommendation for one request.
type Result struct {
	Action              Action
	SetbackTempF        float64
	DesiredTempF        float64
	OutdoorTempF        float64
	RestartTime         time.Time
	ReturnTime          time.Time
	RecoveryTimeMinutes float64

	ThermalTimeConstantHours float64
	BreakEvenTimeHours       float64
	BreakEvenFound           bool

	SavingsPerDayUSD     float64
	SavingsPerMonthUSD   float64
	SavingsPerYearUSD    float64
	EnergySavedKWhPerDay float64
	PercentSaved         float64

	RateUSDPerKWh float64
	RateSource    RateSource
	Comparison    Comparison
	Thermal       ThermalParameters

	Warnings Warnings
}

// Engine runs the three calculation stages under one policy. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Engine{policy: policy}, nil
}

func (e *Engine) Policy() Policy { return e.policy }

// Calculate builds the thermal model, optimizes the strategy and prices it.
func (e *Engine) Calculate(req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	thermal, err := BuildThermalParameters(req.Profile, e.policy)
	if err != nil {
		return Result{}, err
	}

	in := StrategyInput{
		Thermal:              thermal,
		DesiredTempF:         req.Schedule.DesiredTempF,
		OutdoorTempF:         req.Schedule.OutdoorTempF,
		AbsenceDurationHours: req.Schedule.AbsenceDurationHours,
		AbsenceStart:         req.Schedule.AbsenceStart,
		FloorAreaSqFt:        req.Profile.FloorAreaSqFt,
		HVACType:             req.Profile.HVACType,
		HVACAgeBand:          req.Profile.HVACAgeBand,
	}
	strategy, err := OptimizeStrategy(in, e.policy)
	if err != nil {
		return Result{}, err
	}
	costs, err := EstimateCosts(strategy, in, req.Schedule.DaysPerWeek, req.Utility, e.policy)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Action:                   strategy.Action,
		SetbackTempF:             strategy.SetbackTempF,
		DesiredTempF:             in.DesiredTempF,
		OutdoorTempF:             in.OutdoorTempF,
		RestartTime:              strategy.RestartTime,
		ReturnTime:               strategy.ReturnTime,
		RecoveryTimeMinutes:      strategy.RecoveryTimeMinutes,
		ThermalTimeConstantHours: strategy.ThermalTimeConstantHours,
		BreakEvenTimeHours:       strategy.BreakEvenTimeHours,
		BreakEvenFound:           strategy.BreakEvenFound,
		SavingsPerDayUSD:         costs.SavingsPerDayUSD,
		SavingsPerMonthUSD:       costs.SavingsPerMonthUSD,
		SavingsPerYearUSD:        costs.SavingsPerYearUSD,
		EnergySavedKWhPerDay:     costs.EnergySavedKWhPerDay,
		PercentSaved:             costs.PercentSaved,
		RateUSDPerKWh:            costs.RateUSDPerKWh,
		RateSource:               costs.RateSource,
		Comparison:               costs.Comparison,
		Thermal:                  thermal,
	}
	res.Warnings.Add(strategy.Warnings...)
	res.Warnings.Add(costs.Warnings...)
	return res, nil
}

// Scenario overrides a few inputs of a request for what-if exploration.
type Scenario struct {
	OutdoorTempF         *float64
	DesiredTempF         *float64
	AbsenceDurationHours *float64
	FloorAreaSqFt        *float64
	InsulationQuality    *InsulationQuality
}

// Apply returns a copy of req with the overrides set.
func (s Scenario) Apply(req Request) Request {
	if s.OutdoorTempF != nil {
		req.Schedule.OutdoorTempF = *s.OutdoorTempF
	}
	if s.DesiredTempF != nil {
		req.Schedule.DesiredTempF = *s.DesiredTempF
	}
	if s.AbsenceDurationHours != nil {
		req.Schedule.AbsenceDurationHours = *s.AbsenceDurationHours
	}
	if s.FloorAreaSqFt != nil {
		req.Profile.FloorAreaSqFt = *s.FloorAreaSqFt
	}
	if s.InsulationQuality != nil {
		req.Profile.InsulationQuality = *s.InsulationQuality
	}
	return req
}
