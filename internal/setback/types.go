package setback

import (
	"fmt"
	"strings"
)

// enumNames maps the wire names of an integer enum. Index 0 is the Unknown value.
type enumNames []string

func (n enumNames) name(i int) string {
	if i <= 0 || i >= len(n) {
		return "unknown"
	}
	return n[i]
}

func (n enumNames) parse(kind, s string) (int, error) {
	s = strings.TrimSpace(s)
	for i := 1; i < len(n); i++ {
		if n[i] == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s: %q", kind, s)
}

// HomeType is an integer enum.
type HomeType int

const (
	HomeUnknown HomeType = iota
	HomeSingleFamily
	HomeApartment
	HomeTownhouse
	HomeCondo
)

var homeTypeNames = enumNames{"", "single-family", "apartment", "townhouse", "condo"}

func (h HomeType) Valid() bool { return h > HomeUnknown && h <= HomeCondo }
func (h HomeType) String() string { return homeTypeNames.name(int(h)) }

func ParseHomeType(s string) (HomeType, error) {
	if s == "single_family" {
		return HomeSingleFamily, nil
	}
	i, err := homeTypeNames.parse("home type", s)
	return HomeType(i), err
}

// ConstructionType is an integer enum.
type ConstructionType int

const (
	ConstructionUnknown ConstructionType = iota
	ConstructionWoodFrame
	ConstructionBrick
	ConstructionConcrete
	ConstructionMixed
)

var constructionTypeNames = enumNames{"", "wood_frame", "brick", "concrete", "mixed"}

func (c ConstructionType) Valid() bool {
	return c > ConstructionUnknown && c <= ConstructionMixed
}
func (c ConstructionType) String() string { return constructionTypeNames.name(int(c)) }

func ParseConstructionType(s string) (ConstructionType, error) {
	i, err := constructionTypeNames.parse("construction type", s)
	return ConstructionType(i), err
}

// ConstructionEra is a proxy for the building code in force when the envelope was built.
type ConstructionEra int

const (
	EraUnknown ConstructionEra = iota
	EraBefore1980
	Era1980To2000
	Era2000To2010
	EraAfter2010
)

var constructionEraNames = enumNames{"", "before_1980", "1980_2000", "2000_2010", "after_2010"}

func (e ConstructionEra) Valid() bool { return e > EraUnknown && e <= EraAfter2010 }
func (e ConstructionEra) String() string { return constructionEraNames.name(int(e)) }

func ParseConstructionEra(s string) (ConstructionEra, error) {
	i, err := constructionEraNames.parse("construction era", s)
	return ConstructionEra(i), err
}

// InsulationQuality is ordered: a higher value is better insulation.
type InsulationQuality int

const (
	InsulationUnknown InsulationQuality = iota
	InsulationPoor
	InsulationAverage
	InsulationGood
	InsulationExcellent
)

var insulationQualityNames = enumNames{"", "poor", "average", "good", "excellent"}

func (q InsulationQuality) Valid() bool {
	return q > InsulationUnknown && q <= InsulationExcellent
}
func (q InsulationQuality) String() string { return insulationQualityNames.name(int(q)) }

func ParseInsulationQuality(s string) (InsulationQuality, error) {
	i, err := insulationQualityNames.parse("insulation quality", strings.ToLower(s))
	return InsulationQuality(i), err
}

// WindowType is an integer enum.
type WindowType int

const (
	WindowUnknown WindowType = iota
	WindowSinglePane
	WindowDoublePane
	WindowTriplePane
	WindowLowE
)

var windowTypeNames = enumNames{"", "single_pane", "double_pane", "triple_pane", "low_e"}

func (w WindowType) Valid() bool { return w > WindowUnknown && w <= WindowLowE }
func (w WindowType) String() string { return windowTypeNames.name(int(w)) }

// ParseWindowType accepts the form alias "low_e_double" for low_e.
func ParseWindowType(s string) (WindowType, error) {
	if s == "low_e_double" {
		return WindowLowE, nil
	}
	i, err := windowTypeNames.parse("window type", s)
	return WindowType(i), err
}

// HVACType is an integer enum.
type HVACType int

const (
	HVACUnknown HVACType = iota
	HVACCentralAC
	HVACHeatPump
	HVACWindowUnit
	HVACDuctless
)

var hvacTypeNames = enumNames{"", "central_ac", "heat_pump", "window_unit", "ductless"}

func (h HVACType) Valid() bool { return h > HVACUnknown && h <= HVACDuctless }
func (h HVACType) String() string { return hvacTypeNames.name(int(h)) }

func ParseHVACType(s string) (HVACType, error) {
	i, err := hvacTypeNames.parse("hvac type", s)
	return HVACType(i), err
}

// HVACAgeBand degrades capacity and efficiency as equipment ages.
type HVACAgeBand int

const (
	AgeUnknown HVACAgeBand = iota
	AgeUnder5
	Age5To10
	Age10To15
	Age15Plus
)

var hvacAgeBandNames = enumNames{"", "under_5", "5_10", "10_15", "15_plus"}

func (a HVACAgeBand) Valid() bool { return a > AgeUnknown && a <= Age15Plus }
func (a HVACAgeBand) String() string { return hvacAgeBandNames.name(int(a)) }

func ParseHVACAgeBand(s string) (HVACAgeBand, error) {
	i, err := hvacAgeBandNames.parse("hvac age band", s)
	return HVACAgeBand(i), err
}

// Action is the recommendation for one absence. It is terminal per calculation.
type Action int

const (
	ActionUnknown Action = iota
	ActionSetback
	ActionMaintain
)

var actionNames = enumNames{"", "SETBACK", "MAINTAIN"}

func (a Action) Valid() bool { return a == ActionSetback || a == ActionMaintain }
func (a Action) String() string { return actionNames.name(int(a)) }

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	i, err := actionNames.parse("action", string(b))
	if err != nil {
		return err
	}
	*a = Action(i)
	return nil
}

// Source tells where a resolved envelope quantity came from.
type Source int

const (
	SourceUnknown Source = iota
	SourceExplicit
	SourceGeometric
	SourceDefault
)

var sourceNames = enumNames{"", "explicit", "geometric", "default"}

func (s Source) String() string { return sourceNames.name(int(s)) }

func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Source) UnmarshalText(b []byte) error {
	i, err := sourceNames.parse("source", string(b))
	if err != nil {
		return err
	}
	*s = Source(i)
	return nil
}
