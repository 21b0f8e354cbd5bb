package wire

import (
	"errors"

	"github.com/Agrid-Dev/setback-advisor/internal/incentives"
)

type EligibilityDTO struct {
	Federal                bool    `json:"federalEligibility"`
	FederalReason          string  `json:"federalReason"`
	State                  bool    `json:"stateEligibility"`
	StateReason            string  `json:"stateReason"`
	EstimatedFederalCredit float64 `json:"estimatedFederalCredit"`
}

// Answers reads the incentives questions. Unanswered questions stay Unknown.
func (f FormData) Answers() (incentives.Answers, error) {
	var (
		a   incentives.Answers
		err error
	)
	if a.OwnsHome, err = incentives.ParseAnswer(f.OwnsHome); err != nil {
		return a, fieldErr("ownsHome", err)
	}
	if a.PrimaryResidence, err = incentives.ParseAnswer(f.PrimaryResidence); err != nil {
		return a, fieldErr("primaryResidence", err)
	}
	if a.PropertyType, err = incentives.ParsePropertyType(f.PropertyType); err != nil {
		return a, fieldErr("propertyType", err)
	}
	if a.MeetsEfficiency, err = incentives.ParseEfficiency(f.EquipmentMeetsEfficiency); err != nil {
		return a, fieldErr("equipmentMeetsEfficiency", err)
	}
	for _, s := range f.EquipmentSelected {
		eq, err := incentives.ParseEquipment(s)
		if err != nil {
			return a, fieldErr("equipmentSelected", err)
		}
		a.Equipment = append(a.Equipment, eq)
	}
	if f.ProjectCost.Set {
		if f.ProjectCost.Value < 0 {
			return a, fieldErr("projectCost", errors.New("must be >= 0"))
		}
		a.ProjectCostUSD = f.ProjectCost.Ptr()
	}
	return a, nil
}

// Eligibility evaluates the incentives answers. It returns nil when the
// form did not answer any of them.
func (f FormData) Eligibility() (*EligibilityDTO, error) {
	a, err := f.Answers()
	if err != nil || a.Empty() {
		return nil, err
	}
	e := incentives.Evaluate(a)
	return &EligibilityDTO{
		Federal:                e.Federal,
		FederalReason:          e.FederalReason,
		State:                  e.State,
		StateReason:            e.StateReason,
		EstimatedFederalCredit: round(e.EstimatedFederalCreditUSD, 2),
	}, nil
}

// WithEligibility attaches the eligibility screen to a successful reply.
func (r Response) WithEligibility(e *EligibilityDTO) Response {
	if r.Data != nil {
		r.Data.Eligibility = e
	}
	return r
}
