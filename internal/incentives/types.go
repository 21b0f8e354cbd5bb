package incentives

import (
	"fmt"
	"strings"
)

type names []string

func (n names) name(i int) string {
	if i <= 0 || i >= len(n) {
		return "unknown"
	}
	return n[i]
}

// parse maps "" to the Unknown value; every question is optional.
func (n names) parse(kind, s string) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, nil
	}
	for i := 1; i < len(n); i++ {
		if n[i] == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s: %q", kind, s)
}

// Answer is a yes/no question left optional.
type Answer int

const (
	AnswerUnknown Answer = iota
	AnswerYes
	AnswerNo
)

var answerNames = names{"", "yes", "no"}

func (a Answer) String() string { return answerNames.name(int(a)) }

func ParseAnswer(s string) (Answer, error) {
	i, err := answerNames.parse("answer", s)
	return Answer(i), err
}

type PropertyType int

const (
	PropertyUnknown PropertyType = iota
	PropertySingleFamily
	PropertyMultiFamily
	PropertyRental
	PropertyOther
)

var propertyTypeNames = names{"", "single_family", "multi_family", "rental", "other"}

func (p PropertyType) String() string { return propertyTypeNames.name(int(p)) }

func ParsePropertyType(s string) (PropertyType, error) {
	i, err := propertyTypeNames.parse("property type", s)
	return PropertyType(i), err
}

// Efficiency records whether the equipment meets ENERGY STAR or the
// program's criteria.
type Efficiency int

const (
	EfficiencyUnknown Efficiency = iota
	EfficiencyYes
	EfficiencyNo
	EfficiencyNotSure
)

var efficiencyNames = names{"", "yes", "no", "not_sure"}

func (e Efficiency) String() string { return efficiencyNames.name(int(e)) }

func ParseEfficiency(s string) (Efficiency, error) {
	i, err := efficiencyNames.parse("efficiency answer", s)
	return Efficiency(i), err
}

type Equipment int

const (
	EquipmentUnknown Equipment = iota
	EquipmentHeatPump
	EquipmentHeatPumpWaterHeater
	EquipmentCentralAC
	EquipmentFurnace
	EquipmentWeatherization
)

var equipmentNames = names{"", "heat_pump", "heat_pump_water_heater", "central_ac", "furnace", "weatherization"}

func (e Equipment) String() string { return equipmentNames.name(int(e)) }

// heatPump reports whether e falls under the separate heat pump credit cap.
func (e Equipment) heatPump() bool {
	return e == EquipmentHeatPump || e == EquipmentHeatPumpWaterHeater
}

func ParseEquipment(s string) (Equipment, error) {
	i, err := equipmentNames.parse("equipment", s)
	if err == nil && i == 0 {
		err = fmt.Errorf("invalid equipment: %q", s)
	}
	return Equipment(i), err
}
