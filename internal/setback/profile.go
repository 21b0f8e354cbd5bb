package setback

import (
	"math"
	"time"
)

// BuildingProfile describes the building. Pointer fields are optional
// refinements; nil means "resolve from related fields or defaults".
type BuildingProfile struct {
	FloorAreaSqFt   float64
	CeilingHeightFt float64

	HomeType          HomeType
	ConstructionType  ConstructionType
	ConstructionEra   ConstructionEra
	InsulationQuality InsulationQuality
	WindowType        WindowType

	WindowAreaPercent *float64
	WallAreaSqFt      *float64
	RoofAreaSqFt      *float64
	TotalDoorAreaSqFt *float64
	NumExteriorDoors  *int

	HVACType    HVACType
	HVACAgeBand HVACAgeBand
}

func (p BuildingProfile) VolumeCuFt() float64 {
	return p.FloorAreaSqFt * p.CeilingHeightFt
}

func (p BuildingProfile) Validate() error {
	if !positive(p.FloorAreaSqFt) {
		return invalidField("floorAreaSqFt", "must be > 0, got %v", p.FloorAreaSqFt)
	}
	if !positive(p.CeilingHeightFt) {
		return invalidField("ceilingHeightFt", "must be > 0, got %v", p.CeilingHeightFt)
	}
	if !p.HomeType.Valid() {
		return invalidField("homeType", "unknown value")
	}
	if !p.ConstructionType.Valid() {
		return invalidField("constructionType", "unknown value")
	}
	if !p.ConstructionEra.Valid() {
		return invalidField("constructionEra", "unknown value")
	}
	if !p.InsulationQuality.Valid() {
		return invalidField("insulationQuality", "unknown value")
	}
	if !p.WindowType.Valid() {
		return invalidField("windowType", "unknown value")
	}
	if !p.HVACType.Valid() {
		return invalidField("hvacType", "unknown value")
	}
	if !p.HVACAgeBand.Valid() {
		return invalidField("hvacAgeBand", "unknown value")
	}
	if v := p.WindowAreaPercent; v != nil && (math.IsNaN(*v) || *v < 0 || *v > 100) {
		return invalidField("windowAreaPercent", "must be within [0, 100], got %v", *v)
	}
	if v := p.WallAreaSqFt; v != nil && !positive(*v) {
		return invalidField("wallAreaSqFt", "must be > 0, got %v", *v)
	}
	if v := p.RoofAreaSqFt; v != nil && !nonNegative(*v) {
		return invalidField("roofAreaSqFt", "must be >= 0, got %v", *v)
	}
	if v := p.TotalDoorAreaSqFt; v != nil && !nonNegative(*v) {
		return invalidField("totalDoorAreaSqFt", "must be >= 0, got %v", *v)
	}
	if v := p.NumExteriorDoors; v != nil && *v < 0 {
		return invalidField("numExteriorDoors", "must be >= 0, got %d", *v)
	}
	return nil
}

// Accepted desired indoor temperatures, °F.
const (
	DesiredTempMinF = 65
	DesiredTempMaxF = 78
)

// Schedule is the climate and absence pattern of one calculation.
type Schedule struct {
	OutdoorTempF         float64
	DesiredTempF         float64
	AbsenceDurationHours float64
	AbsenceStart         time.Time
	DaysPerWeek          int
}

func (s Schedule) Validate() error {
	if math.IsNaN(s.OutdoorTempF) || math.IsInf(s.OutdoorTempF, 0) {
		return invalidField("outdoorTempF", "must be a finite number")
	}
	if !(s.DesiredTempF >= DesiredTempMinF && s.DesiredTempF <= DesiredTempMaxF) {
		return invalidField("desiredTempF", "must be within [%v, %v], got %v", DesiredTempMinF, DesiredTempMaxF, s.DesiredTempF)
	}
	if !positive(s.AbsenceDurationHours) {
		return invalidField("absenceDurationHours", "must be > 0, got %v", s.AbsenceDurationHours)
	}
	if s.DaysPerWeek < 1 || s.DaysPerWeek > 7 {
		return invalidField("daysPerWeek", "must be within 1..7, got %d", s.DaysPerWeek)
	}
	return nil
}

// Utility carries the optional billing signals.
type Utility struct {
	MonthlyBillUSD *float64
	RateUSDPerKWh  *float64
}

func (u Utility) Validate() error {
	if v := u.RateUSDPerKWh; v != nil && !positive(*v) {
		return invalidField("electricityRate", "must be > 0, got %v", *v)
	}
	if v := u.MonthlyBillUSD; v != nil && !positive(*v) {
		return invalidField("monthlyBill", "must be > 0, got %v", *v)
	}
	return nil
}

// Request is the full, already-normalized input of one calculation.
type Request struct {
	Profile  BuildingProfile
	Schedule Schedule
	Utility  Utility
}

func (r Request) Validate() error {
	if err := r.Profile.Validate(); err != nil {
		return err
	}
	if err := r.Schedule.Validate(); err != nil {
		return err
	}
	return r.Utility.Validate()
}

// positive is false for NaN and +Inf.
func positive(v float64) bool { return v > 0 && !math.IsInf(v, 1) }

func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 1) }
