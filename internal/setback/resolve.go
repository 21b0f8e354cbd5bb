package setback

import "math"

// Quantity is a resolved value together with where it came from.
type Quantity struct {
	Value  float64 `json:"value"`
	Source Source  `json:"source"`
}

type resolveStep struct {
	source Source
	fn     func(p BuildingProfile, pol Policy) (float64, bool)
}

// resolve returns the first step that yields a value. Chains end with a step
// that always succeeds.
func resolve(p BuildingProfile, pol Policy, steps ...resolveStep) Quantity {
	for _, s := range steps {
		if v, ok := s.fn(p, pol); ok {
			return Quantity{Value: v, Source: s.source}
		}
	}
	return Quantity{}
}

func explicit(field func(BuildingProfile) *float64) resolveStep {
	return resolveStep{SourceExplicit, func(p BuildingProfile, _ Policy) (float64, bool) {
		if v := field(p); v != nil {
			return *v, true
		}
		return 0, false
	}}
}

// footprintPerimeterFt assumes a rectangle of the policy aspect ratio.
func footprintPerimeterFt(floorAreaSqFt, aspect float64) float64 {
	width := math.Sqrt(floorAreaSqFt / aspect)
	return 2 * width * (1 + aspect)
}

var wallAreaChain = []resolveStep{
	explicit(func(p BuildingProfile) *float64 { return p.WallAreaSqFt }),
	{SourceGeometric, func(p BuildingProfile, pol Policy) (float64, bool) {
		perimeter := footprintPerimeterFt(p.FloorAreaSqFt, pol.FootprintAspectRatio)
		return perimeter * p.CeilingHeightFt * wallExposure[p.HomeType], true
	}},
}

var roofAreaChain = []resolveStep{
	explicit(func(p BuildingProfile) *float64 { return p.RoofAreaSqFt }),
	{SourceGeometric, func(p BuildingProfile, _ Policy) (float64, bool) {
		return p.FloorAreaSqFt * roofExposure[p.HomeType], true
	}},
}

var windowPercentChain = []resolveStep{
	explicit(func(p BuildingProfile) *float64 { return p.WindowAreaPercent }),
	{SourceDefault, func(_ BuildingProfile, pol Policy) (float64, bool) {
		return pol.DefaultWindowAreaPercent, true
	}},
}

var doorAreaChain = []resolveStep{
	explicit(func(p BuildingProfile) *float64 { return p.TotalDoorAreaSqFt }),
	{SourceGeometric, func(p BuildingProfile, pol Policy) (float64, bool) {
		if p.NumExteriorDoors == nil {
			return 0, false
		}
		return float64(*p.NumExteriorDoors) * pol.DefaultDoorAreaSqFt, true
	}},
	{SourceDefault, func(p BuildingProfile, pol Policy) (float64, bool) {
		return float64(defaultDoors[p.HomeType]) * pol.DefaultDoorAreaSqFt, true
	}},
}

// Envelope is the resolved exterior surface of the building.
type Envelope struct {
	WallArea   Quantity `json:"wallAreaSqFt"`
	RoofArea   Quantity `json:"roofAreaSqFt"`
	WindowArea Quantity `json:"windowAreaSqFt"`
	DoorArea   Quantity `json:"doorAreaSqFt"`
}

// OpaqueWallArea is the wall area left after windows and doors.
func (e Envelope) OpaqueWallArea() float64 {
	return e.WallArea.Value - e.WindowArea.Value - e.DoorArea.Value
}

// resolveEnvelope expects a validated profile.
func resolveEnvelope(p BuildingProfile, pol Policy) (Envelope, error) {
	wall := resolve(p, pol, wallAreaChain...)
	pct := resolve(p, pol, windowPercentChain...)
	env := Envelope{
		WallArea:   wall,
		RoofArea:   resolve(p, pol, roofAreaChain...),
		WindowArea: Quantity{Value: wall.Value * pct.Value / 100, Source: pct.Source},
		DoorArea:   resolve(p, pol, doorAreaChain...),
	}
	if env.OpaqueWallArea() < 0 {
		return Envelope{}, invalidField("totalDoorAreaSqFt",
			"windows (%.0f sq ft) and doors (%.0f sq ft) exceed the wall area (%.0f sq ft)",
			env.WindowArea.Value, env.DoorArea.Value, env.WallArea.Value)
	}
	return env, nil
}
