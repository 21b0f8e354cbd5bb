package wire

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Agrid-Dev/setback-advisor/internal/setback"
)

func TestEligibilityOmittedWhenUnanswered(t *testing.T) {
	var body CalculateRequest
	require.NoError(t, json.Unmarshal([]byte(referenceBody), &body))

	e, err := body.FormData.Eligibility()
	require.NoError(t, err)
	assert.Nil(t, e)

	b, err := json.Marshal(Success(setback.Result{}).WithEligibility(e))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "eligibility")
}

func TestEligibilityFromForm(t *testing.T) {
	f := FormData{
		OwnsHome:                 "yes",
		PrimaryResidence:         "yes",
		PropertyType:             "rental",
		EquipmentSelected:        []string{"central_ac"},
		EquipmentMeetsEfficiency: "yes",
		ProjectCost:              Num(3000),
	}
	e, err := f.Eligibility()
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.False(t, e.Federal)
	assert.True(t, e.State)
	assert.Zero(t, e.EstimatedFederalCredit)

	f.PropertyType = "single_family"
	e, err = f.Eligibility()
	require.NoError(t, err)
	assert.True(t, e.Federal)
	assert.Equal(t, 900.0, e.EstimatedFederalCredit)

	resp := Success(setback.Result{}).WithEligibility(e)
	assert.Same(t, e, resp.Data.Eligibility)
	assert.Nil(t, Failure(setback.ErrInvalidProfile).WithEligibility(e).Data)
}

func TestEligibilityFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		form  FormData
		field string
	}{
		{"owns home", FormData{OwnsHome: "sometimes"}, "ownsHome"},
		{"primary residence", FormData{PrimaryResidence: "1"}, "primaryResidence"},
		{"property type", FormData{PropertyType: "castle"}, "propertyType"},
		{"efficiency", FormData{EquipmentMeetsEfficiency: "maybe"}, "equipmentMeetsEfficiency"},
		{"equipment", FormData{EquipmentSelected: []string{"heat_pump", "pool"}}, "equipmentSelected"},
		{"negative cost", FormData{ProjectCost: Num(-1)}, "projectCost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.form.Eligibility()
			var ipe *setback.InvalidProfileError
			require.True(t, errors.As(err, &ipe), "got %v", err)
			assert.Equal(t, tt.field, ipe.Field)
			assert.ErrorIs(t, err, setback.ErrInvalidProfile)
		})
	}
}
