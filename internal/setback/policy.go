package setback

// Policy holds the tunables that are policy choices rather than physics.
type Policy struct {
	TauMinHours float64
	TauMaxHours float64

	MinSetbackDepthF float64 // shallowest setback worth scheduling
	MaxSetbackDepthF float64 // humidity and furnishing protection
	SetbackStepF     float64 // search resolution

	// FootprintAspectRatio is length/width of the assumed rectangular footprint.
	// 1 is a square.
	FootprintAspectRatio     float64
	DefaultWindowAreaPercent float64 // of gross wall area
	DefaultDoorAreaSqFt      float64 // per exterior door

	DefaultRateUSDPerKWh float64
	BaselineMonthlyKWh   float64 // used to turn a monthly bill into a rate

	BreakEvenHorizonHours   float64
	BreakEvenToleranceHours float64
}

func DefaultPolicy() Policy {
	return Policy{
		TauMinHours:              0.5,
		TauMaxHours:              24,
		MinSetbackDepthF:         1,
		MaxSetbackDepthF:         8,
		SetbackStepF:             0.1,
		FootprintAspectRatio:     1,
		DefaultWindowAreaPercent: 15,
		DefaultDoorAreaSqFt:      20,
		DefaultRateUSDPerKWh:     0.16,
		BaselineMonthlyKWh:       886,
		BreakEvenHorizonHours:    168,
		BreakEvenToleranceHours:  0.01,
	}
}

func (p *Policy) Validate() error {
	if p.TauMinHours <= 0 || p.TauMaxHours < p.TauMinHours {
		return ErrInvalidPolicy
	}
	if p.MinSetbackDepthF <= 0 || p.MaxSetbackDepthF < p.MinSetbackDepthF {
		return ErrInvalidPolicy
	}
	if p.SetbackStepF <= 0 || p.SetbackStepF > p.MinSetbackDepthF {
		return ErrInvalidPolicy
	}
	if p.FootprintAspectRatio < 1 {
		return ErrInvalidPolicy
	}
	if p.DefaultWindowAreaPercent < 0 || p.DefaultWindowAreaPercent > 100 || p.DefaultDoorAreaSqFt < 0 {
		return ErrInvalidPolicy
	}
	if p.DefaultRateUSDPerKWh <= 0 || p.BaselineMonthlyKWh <= 0 {
		return ErrInvalidPolicy
	}
	if p.BreakEvenToleranceHours <= 0 || p.BreakEvenHorizonHours <= p.BreakEvenToleranceHours {
		return ErrInvalidPolicy
	}
	return nil
}
