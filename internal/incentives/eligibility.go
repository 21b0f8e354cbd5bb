package incentives

import "math"

// Federal credit terms: a share of the project cost, with a cap for heat
// pumps, a cap for other improvements and an annual total.
const (
	FederalCreditRate    = 0.30
	HeatPumpCapUSD       = 2000
	OtherEquipmentCapUSD = 1200
	AnnualCapUSD         = 3200
)

// Answers are the homeowner's responses to the incentives questions.
type Answers struct {
	OwnsHome         Answer
	PrimaryResidence Answer
	PropertyType     PropertyType
	Equipment        []Equipment
	MeetsEfficiency  Efficiency
	ProjectCostUSD   *float64
}

// Empty is true when none of the questions were answered.
func (a Answers) Empty() bool {
	return a.OwnsHome == AnswerUnknown &&
		a.PrimaryResidence == AnswerUnknown &&
		a.PropertyType == PropertyUnknown &&
		len(a.Equipment) == 0 &&
		a.MeetsEfficiency == EfficiencyUnknown &&
		a.ProjectCostUSD == nil
}

type Eligibility struct {
	Federal       bool
	FederalReason string
	State         bool
	StateReason   string

	// EstimatedFederalCreditUSD is 0 unless Federal and a project cost were given.
	EstimatedFederalCreditUSD float64
}

// Evaluate screens the answers against the federal energy-efficiency credit
// and typical state HVAC rebate rules. It is a first-pass screen, not tax advice.
func Evaluate(a Answers) Eligibility {
	var e Eligibility
	e.Federal, e.FederalReason = federal(a)
	e.State, e.StateReason = state(a)
	if e.Federal && a.ProjectCostUSD != nil {
		e.EstimatedFederalCreditUSD = FederalCredit(*a.ProjectCostUSD, a.Equipment)
	}
	return e
}

func federal(a Answers) (bool, string) {
	switch {
	case len(a.Equipment) == 0:
		return false, "No qualifying equipment selected."
	case a.PropertyType == PropertyRental:
		return false, "The credit cannot be claimed by a landlord for a rental property."
	case a.PrimaryResidence == AnswerNo:
		return false, "The credit applies to improvements to a home you live in."
	case a.MeetsEfficiency == EfficiencyNo:
		return false, "Equipment must meet ENERGY STAR or program efficiency criteria."
	case a.MeetsEfficiency != EfficiencyYes:
		return false, "Confirm the equipment meets ENERGY STAR efficiency criteria to qualify."
	}
	return true, "Eligible for up to 30% of project cost: heat pumps capped at $2,000, other improvements at $1,200, $3,200 per year in total."
}

func state(a Answers) (bool, string) {
	switch {
	case len(a.Equipment) == 0:
		return false, "No qualifying equipment selected."
	case a.OwnsHome == AnswerNo:
		return false, "State rebates are paid to the property owner."
	case a.OwnsHome != AnswerYes:
		return false, "Confirm you own the home to check state rebates."
	case a.PropertyType == PropertyOther:
		return false, "State programs cover single-family, multi-family and rental homes."
	case a.MeetsEfficiency == EfficiencyNo:
		return false, "Rebated equipment must meet program efficiency criteria."
	}
	return true, "Likely eligible for state HVAC rebates; check your state energy office or utility for current programs."
}

// FederalCredit applies the credit rate to cost and caps it by the
// equipment categories selected.
func FederalCredit(cost float64, equipment []Equipment) float64 {
	if !(cost > 0) || math.IsInf(cost, 0) {
		return 0
	}
	var hp, other bool
	for _, eq := range equipment {
		if eq.heatPump() {
			hp = true
		} else {
			other = true
		}
	}
	limit := 0.0
	if hp {
		limit += HeatPumpCapUSD
	}
	if other {
		limit += OtherEquipmentCapUSD
	}
	limit = math.Min(limit, AnnualCapUSD)
	return math.Min(cost*FederalCreditRate, limit)
}
