package wire

import (
	"fmt"
	"strings"
	"time"

	"github.com/Agrid-Dev/setback-advisor/internal/setback"
)

// FormData is the questionnaire as the mobile client posts it.
type FormData struct {
	HomeType          string `json:"homeType"`
	FloorArea         Number `json:"floorArea"`
	CeilingHeight     Number `json:"ceilingHeight"`
	ConstructionType  string `json:"constructionType"`
	ConstructionEra   string `json:"constructionEra"`
	InsulationQuality string `json:"insulationQuality"`
	WindowType        string `json:"windowType"`
	HVACType          string `json:"hvacType"`
	HVACAge           string `json:"hvacAge"`

	DesiredTemp      Number `json:"desiredTemp"`
	OutdoorTemp      Number `json:"outdoorTemp"`
	AbsenceDuration  Number `json:"absenceDuration"`
	AbsenceStartTime string `json:"absenceStartTime"`
	DaysPerWeek      Number `json:"daysPerWeek"`

	MonthlyBill     Number `json:"monthlyBill"`
	ElectricityRate Number `json:"electricityRate"`

	OwnsHome                 string   `json:"ownsHome"`
	PrimaryResidence         string   `json:"primaryResidence"`
	PropertyType             string   `json:"propertyType"`
	EquipmentSelected        []string `json:"equipmentSelected"`
	EquipmentMeetsEfficiency string   `json:"equipmentMeetsEfficiency"`
	ProjectCost              Number   `json:"projectCost"`
}

// RoomData carries optional envelope measurements.
type RoomData struct {
	WallAreaSqFt      Number `json:"wallAreaSqFt"`
	RoofAreaSqFt      Number `json:"roofAreaSqFt"`
	TotalDoorAreaSqFt Number `json:"totalDoorAreaSqFt"`
	NumExteriorDoors  Number `json:"numExteriorDoors"`
	WindowAreaPercent Number `json:"windowAreaPercent"`
}

type CalculateRequest struct {
	FormData FormData `json:"formData"`
	RoomData RoomData `json:"roomData"`
}

// ScenarioOverrides are the what-if sliders.
type ScenarioOverrides struct {
	OutdoorTemp       Number `json:"outdoorTemp"`
	DesiredTemp       Number `json:"desiredTemp"`
	AbsenceDuration   Number `json:"absenceDuration"`
	FloorArea         Number `json:"floorArea"`
	InsulationQuality string `json:"insulationQuality"`
}

type ScenarioRequest struct {
	FormData FormData          `json:"formData"`
	RoomData RoomData          `json:"roomData"`
	Scenario ScenarioOverrides `json:"scenario"`
}

// DefaultAbsenceStart is used when the form leaves the start time empty.
var DefaultAbsenceStart = time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)

var clockLayouts = []string{"3:04 PM", time.Kitchen, "3 PM", "3PM", "15:04"}

// ParseClock reads a wall-clock time such as "8:00 AM" or "17:30".
func ParseClock(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultAbsenceStart, nil
	}
	upper := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

// FormatClock renders t the way the client displays times.
func FormatClock(t time.Time) string {
	return t.Format("3:04 PM")
}

func fieldErr(field string, err error) error {
	return &setback.InvalidProfileError{Field: field, Reason: err.Error()}
}

func missing(field string) error {
	return &setback.InvalidProfileError{Field: field, Reason: "required"}
}

// Request normalizes the body into an engine request. Enum and required
// field problems come back as *setback.InvalidProfileError.
func (c CalculateRequest) Request() (setback.Request, error) {
	f := c.FormData
	var (
		req setback.Request
		err error
	)
	p := &req.Profile

	if !f.FloorArea.Set {
		return req, missing("floorAreaSqFt")
	}
	if !f.CeilingHeight.Set {
		return req, missing("ceilingHeightFt")
	}
	p.FloorAreaSqFt = f.FloorArea.Value
	p.CeilingHeightFt = f.CeilingHeight.Value

	if p.HomeType, err = setback.ParseHomeType(f.HomeType); err != nil {
		return req, fieldErr("homeType", err)
	}
	if p.ConstructionType, err = setback.ParseConstructionType(f.ConstructionType); err != nil {
		return req, fieldErr("constructionType", err)
	}
	if p.ConstructionEra, err = setback.ParseConstructionEra(f.ConstructionEra); err != nil {
		return req, fieldErr("constructionEra", err)
	}
	if p.InsulationQuality, err = setback.ParseInsulationQuality(f.InsulationQuality); err != nil {
		return req, fieldErr("insulationQuality", err)
	}
	if p.WindowType, err = setback.ParseWindowType(f.WindowType); err != nil {
		return req, fieldErr("windowType", err)
	}
	if p.HVACType, err = setback.ParseHVACType(f.HVACType); err != nil {
		return req, fieldErr("hvacType", err)
	}
	if p.HVACAgeBand, err = setback.ParseHVACAgeBand(f.HVACAge); err != nil {
		return req, fieldErr("hvacAgeBand", err)
	}

	r := c.RoomData
	p.WallAreaSqFt = r.WallAreaSqFt.Ptr()
	p.RoofAreaSqFt = r.RoofAreaSqFt.Ptr()
	p.TotalDoorAreaSqFt = r.TotalDoorAreaSqFt.Ptr()
	if p.NumExteriorDoors, err = r.NumExteriorDoors.IntPtr(); err != nil {
		return req, fieldErr("numExteriorDoors", err)
	}
	p.WindowAreaPercent = r.WindowAreaPercent.Ptr()

	s := &req.Schedule
	switch {
	case !f.OutdoorTemp.Set:
		return req, missing("outdoorTempF")
	case !f.DesiredTemp.Set:
		return req, missing("desiredTempF")
	case !f.AbsenceDuration.Set:
		return req, missing("absenceDurationHours")
	case !f.DaysPerWeek.Set:
		return req, missing("daysPerWeek")
	}
	s.OutdoorTempF = f.OutdoorTemp.Value
	s.DesiredTempF = f.DesiredTemp.Value
	s.AbsenceDurationHours = f.AbsenceDuration.Value
	if s.DaysPerWeek, err = f.DaysPerWeek.Int(); err != nil {
		return req, fieldErr("daysPerWeek", err)
	}
	if s.AbsenceStart, err = ParseClock(f.AbsenceStartTime); err != nil {
		return req, fieldErr("absenceStartTime", err)
	}

	req.Utility = setback.Utility{
		MonthlyBillUSD: f.MonthlyBill.Ptr(),
		RateUSDPerKWh:  f.ElectricityRate.Ptr(),
	}
	return req, nil
}

// Scenario converts the overrides for setback.Scenario.Apply.
func (o ScenarioOverrides) Scenario() (setback.Scenario, error) {
	sc := setback.Scenario{
		OutdoorTempF:         o.OutdoorTemp.Ptr(),
		DesiredTempF:         o.DesiredTemp.Ptr(),
		AbsenceDurationHours: o.AbsenceDuration.Ptr(),
		FloorAreaSqFt:        o.FloorArea.Ptr(),
	}
	if o.InsulationQuality != "" {
		q, err := setback.ParseInsulationQuality(o.InsulationQuality)
		if err != nil {
			return sc, fieldErr("insulationQuality", err)
		}
		sc.InsulationQuality = &q
	}
	return sc, nil
}

// Request applies the scenario to the base form.
func (s ScenarioRequest) Request() (setback.Request, error) {
	base, err := CalculateRequest{FormData: s.FormData, RoomData: s.RoomData}.Request()
	if err != nil {
		return base, err
	}
	sc, err := s.Scenario.Scenario()
	if err != nil {
		return base, err
	}
	return sc.Apply(base), nil
}
