package setback

import (
	"fmt"
	"math"
	"time"
)

// StrategyInput is everything the optimizer needs for one absence.
type StrategyInput struct {
	Thermal ThermalParameters

	DesiredTempF         float64
	OutdoorTempF         float64
	AbsenceDurationHours float64
	AbsenceStart         time.Time

	FloorAreaSqFt float64
	HVACType      HVACType
	HVACAgeBand   HVACAgeBand
}

// Plan is one way of spending the absence. Loads are in efficiency-weighted
// degree-hours: multiply by UA to get BTU at steady part-load efficiency.
type Plan struct {
	SetbackTempF    float64
	PeakTempF       float64 // highest indoor temperature reached
	RestartHours    float64 // from absence start
	RecoveryHours   float64
	LoadDegreeHours float64
}

// Strategy is the optimizer's output.
type Strategy struct {
	Action              Action
	SetbackTempF        float64
	RestartTime         time.Time
	ReturnTime          time.Time
	RecoveryTimeMinutes float64

	ThermalTimeConstantHours float64
	BreakEvenTimeHours       float64
	BreakEvenFound           bool
	MinRecoveryMinutes       float64

	MaintainLoadDegreeHours float64
	// ChosenLoadDegreeHours equals the maintain load when the action is MAINTAIN.
	ChosenLoadDegreeHours float64
	// Candidate is the best setback plan for this absence, reported even when
	// it loses to MAINTAIN. Nil when no setback is possible.
	Candidate *Plan

	Warnings Warnings
}

// coolingModel is the first-order response of the building to an outdoor
// temperature above the desired one.
type coolingModel struct {
	tau      float64 // hours
	outdoor  float64
	desired  float64
	headroom float64 // Q/UA: how far below outdoor the HVAC alone would hold the building
	penalty  float64 // full-load recovery relative to part-load efficiency
	overhead float64 // hours of full-power run lost to each restart
	pol      Policy
}

func newCoolingModel(in StrategyInput, pol Policy) (*coolingModel, error) {
	if !(in.Thermal.TauHours > 0) {
		return nil, &PhysicallyInfeasibleError{
			Kind:   KindNonPositiveTau,
			Detail: fmt.Sprintf("time constant must be > 0 h, got %v", in.Thermal.TauHours),
		}
	}
	if in.OutdoorTempF < in.DesiredTempF {
		return nil, &PhysicallyInfeasibleError{
			Kind: KindHeatingMode,
			Detail: fmt.Sprintf("outdoor %.1f°F is below desired %.1f°F; only cooling setback is modelled",
				in.OutdoorTempF, in.DesiredTempF),
		}
	}
	capacity := hvacCapacityBTUh(in.HVACType, in.HVACAgeBand, in.FloorAreaSqFt)
	m := &coolingModel{
		tau:      in.Thermal.TauHours,
		outdoor:  in.OutdoorTempF,
		desired:  in.DesiredTempF,
		headroom: capacity / in.Thermal.ConductanceBTUhF,
		penalty:  ageRecoveryPenalty[in.HVACAgeBand],
		overhead: restartMinutes[in.HVACType] / 60,
		pol:      pol,
	}
	if m.headroom <= m.outdoor-m.desired {
		return nil, &PhysicallyInfeasibleError{
			Kind: KindInsufficientCapacity,
			Detail: fmt.Sprintf("%s capacity of %.0f BTU/h cannot hold %.1f°F against %.1f°F outdoors",
				in.HVACType, capacity, in.DesiredTempF, in.OutdoorTempF),
		}
	}
	return m, nil
}

// drift is the indoor temperature t hours after the HVAC relaxes to setpoint.
func (m *coolingModel) drift(t, setpoint float64) float64 {
	return math.Min(setpoint, m.outdoor+(m.desired-m.outdoor)*math.Exp(-t/m.tau))
}

// driftHours is the time the building needs to float up to setpoint.
func (m *coolingModel) driftHours(setpoint float64) float64 {
	if setpoint >= m.outdoor {
		return math.Inf(1)
	}
	return m.tau * math.Log((m.outdoor-m.desired)/(m.outdoor-setpoint))
}

// recoveryHours is the full-power pull-down time from temp back to desired.
// The forced response settles toward outdoor - headroom.
func (m *coolingModel) recoveryHours(temp float64) float64 {
	if temp <= m.desired {
		return 0
	}
	eq := m.outdoor - m.headroom
	return m.tau * math.Log((temp-eq)/(m.desired-eq))
}

func (m *coolingModel) maintainLoad(hours float64) float64 {
	return (m.outdoor - m.desired) * hours
}

// plan schedules a setback at setpoint so that recovery ends exactly at the
// end of the absence. restart + recovery(drift(restart)) is increasing in
// restart, so bisection finds the latest restart that still fits.
func (m *coolingModel) plan(setpoint, hours float64) Plan {
	lo, hi := 0.0, hours
	for i := 0; i < 64 && hi-lo > 1e-9; i++ {
		mid := (lo + hi) / 2
		if mid+m.recoveryHours(m.drift(mid, setpoint)) > hours {
			hi = mid
		} else {
			lo = mid
		}
	}
	restart := lo
	peak := m.drift(restart, setpoint)
	recovery := m.recoveryHours(peak)

	var hold float64
	if reach := m.driftHours(setpoint); restart > reach {
		hold = (m.outdoor - setpoint) * (restart - reach)
	}
	return Plan{
		SetbackTempF:    setpoint,
		PeakTempF:       peak,
		RestartHours:    restart,
		RecoveryHours:   recovery,
		LoadDegreeHours: hold + m.headroom*(recovery+m.overhead)*m.penalty,
	}
}

// setbackBand is the setpoint search range. ok is false when the band is
// narrower than the minimum useful depth.
func (m *coolingModel) setbackBand() (lo, hi float64, ok bool) {
	lo = m.desired + m.pol.MinSetbackDepthF
	hi = math.Min(m.outdoor, m.desired+m.pol.MaxSetbackDepthF)
	return lo, hi, hi >= lo
}

// best searches the band on a fixed grid. Among equal loads the lowest
// setpoint wins, which is also the temperature actually reached.
func (m *coolingModel) best(hours float64) (Plan, bool) {
	lo, hi, ok := m.setbackBand()
	if !ok {
		return Plan{}, false
	}
	steps := int(math.Floor((hi-lo)/m.pol.SetbackStepF + 1e-9))
	var best Plan
	for i := 0; i <= steps; i++ {
		p := m.plan(lo+float64(i)*m.pol.SetbackStepF, hours)
		if i == 0 || p.LoadDegreeHours < best.LoadDegreeHours-1e-9 {
			best = p
		}
	}
	return best, true
}

func (m *coolingModel) savings(hours float64) float64 {
	p, _ := m.best(hours)
	return m.maintainLoad(hours) - p.LoadDegreeHours
}

// breakEven returns the shortest absence for which the best setback costs no
// more than maintaining. The bracket doubles from a quarter hour, then
// bisects down to the policy tolerance.
func (m *coolingModel) breakEven() (float64, bool) {
	if _, _, ok := m.setbackBand(); !ok {
		return 0, false
	}
	lo, hi := 0.0, 0.25
	for m.savings(hi) < 0 {
		if hi >= m.pol.BreakEvenHorizonHours {
			return 0, false
		}
		lo, hi = hi, math.Min(hi*2, m.pol.BreakEvenHorizonHours)
	}
	for hi-lo > m.pol.BreakEvenToleranceHours/2 {
		mid := (lo + hi) / 2
		if m.savings(mid) >= 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, true
}

// OptimizeStrategy decides between setting the thermostat back and holding it
// for one absence.
func OptimizeStrategy(in StrategyInput, pol Policy) (Strategy, error) {
	if !positive(in.AbsenceDurationHours) {
		return Strategy{}, invalidField("absenceDurationHours", "must be > 0, got %v", in.AbsenceDurationHours)
	}
	m, err := newCoolingModel(in, pol)
	if err != nil {
		return Strategy{}, err
	}

	hours := in.AbsenceDurationHours
	ret := in.AbsenceStart.Add(hoursToDuration(hours))
	s := Strategy{
		Action:                   ActionMaintain,
		SetbackTempF:             in.DesiredTempF,
		RestartTime:              ret,
		ReturnTime:               ret,
		ThermalTimeConstantHours: in.Thermal.TauHours,
		MaintainLoadDegreeHours:  m.maintainLoad(hours),
	}
	s.ChosenLoadDegreeHours = s.MaintainLoadDegreeHours
	if in.Thermal.Clamped {
		s.Warnings.Add(WarningClampedTau)
	}

	lo, _, ok := m.setbackBand()
	if !ok {
		s.Warnings.Add(WarningNarrowSetbackBand, WarningNoBreakEven)
		s.BreakEvenTimeHours = pol.BreakEvenHorizonHours
		return s, nil
	}
	s.MinRecoveryMinutes = m.recoveryHours(lo) * 60

	s.BreakEvenTimeHours, s.BreakEvenFound = m.breakEven()
	if !s.BreakEvenFound {
		s.BreakEvenTimeHours = pol.BreakEvenHorizonHours
		s.Warnings.Add(WarningNoBreakEven)
	}

	if candidate, ok := m.best(hours); ok {
		s.Candidate = &candidate
	}

	if hours*60 < s.MinRecoveryMinutes {
		s.Warnings.Add(WarningInsufficientTime)
		return s, nil
	}
	if !s.BreakEvenFound || hours < s.BreakEvenTimeHours || s.Candidate == nil {
		return s, nil
	}

	c := s.Candidate
	s.Action = ActionSetback
	s.SetbackTempF = c.SetbackTempF
	s.RecoveryTimeMinutes = c.RecoveryHours * 60
	s.RestartTime = ret.Add(-hoursToDuration(c.RecoveryHours))
	s.ChosenLoadDegreeHours = c.LoadDegreeHours
	return s, nil
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour)).Round(time.Second)
}
