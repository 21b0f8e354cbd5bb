package setback

// Physical-constant policy. Every coefficient the engine uses lives here, indexed
// by enum, so the numbers can be audited and re-calibrated without touching the
// algorithms. Values are residential rules of thumb (ASHRAE/DOE ranges) tuned so
// that a typical 2000 sq ft home lands at a 2-6 h time constant.

const (
	btuPerKWh = 3412.14

	// Air heat capacity: 0.24 BTU/lb·°F × 0.075 lb/ft³.
	infiltrationBTUPerCuFtF = 0.018

	doorUFactor = 0.4

	// Share of rated capacity that removes sensible heat; the rest is latent.
	sensibleHeatRatio = 0.75
)

// Wall and roof R-values (ft²·°F·h/BTU) by insulation tier.
var (
	wallRValue = [...]float64{InsulationPoor: 7, InsulationAverage: 13, InsulationGood: 19, InsulationExcellent: 25}
	roofRValue = [...]float64{InsulationPoor: 19, InsulationAverage: 30, InsulationGood: 38, InsulationExcellent: 49}
)

// Code-era multiplier on R-values and air changes per hour.
var (
	eraRFactor = [...]float64{EraBefore1980: 0.8, Era1980To2000: 0.95, Era2000To2010: 1.0, EraAfter2010: 1.05}
	eraACH     = [...]float64{EraBefore1980: 0.9, Era1980To2000: 0.6, Era2000To2010: 0.45, EraAfter2010: 0.3}
)

// Window U-factors (BTU/h·ft²·°F).
var windowUFactor = [...]float64{
	WindowSinglePane: 1.1,
	WindowDoublePane: 0.5,
	WindowTriplePane: 0.3,
	WindowLowE:       0.35,
}

// Effective thermal mass per cubic foot of conditioned volume (BTU/°F·ft³),
// structure and contents lumped together.
var massPerCuFt = [...]float64{
	ConstructionWoodFrame: 0.11,
	ConstructionBrick:     0.16,
	ConstructionConcrete:  0.20,
	ConstructionMixed:     0.135,
}

// Share of the envelope exposed to outdoor air; the rest is party walls or
// floors shared with conditioned neighbours.
var (
	wallExposure = [...]float64{HomeSingleFamily: 1, HomeApartment: 0.5, HomeTownhouse: 0.6, HomeCondo: 0.5}
	roofExposure = [...]float64{HomeSingleFamily: 1, HomeApartment: 0.5, HomeTownhouse: 1, HomeCondo: 0.5}
	defaultDoors = [...]int{HomeSingleFamily: 2, HomeApartment: 1, HomeTownhouse: 2, HomeCondo: 1}
)

// HVAC rated capacity (BTU/h per sq ft), seasonal COP and the minutes of
// full-power run lost to each restart (duct and coil pull-down).
var (
	capacityPerSqFt = [...]float64{HVACCentralAC: 20, HVACHeatPump: 20, HVACWindowUnit: 12, HVACDuctless: 18}
	seasonalCOP     = [...]float64{HVACCentralAC: 4.1, HVACHeatPump: 4.4, HVACWindowUnit: 2.9, HVACDuctless: 5.3}
	restartMinutes  = [...]float64{HVACCentralAC: 10, HVACHeatPump: 10, HVACWindowUnit: 3, HVACDuctless: 5}
)

// Ageing: capacity and efficiency derating, and how much worse full-load
// recovery is than steady part-load operation.
var (
	ageCapacityFactor   = [...]float64{AgeUnder5: 1, Age5To10: 0.95, Age10To15: 0.88, Age15Plus: 0.8}
	ageEfficiencyFactor = [...]float64{AgeUnder5: 1, Age5To10: 0.95, Age10To15: 0.88, Age15Plus: 0.8}
	ageRecoveryPenalty  = [...]float64{AgeUnder5: 1.15, Age5To10: 1.2, Age10To15: 1.27, Age15Plus: 1.35}
)

// effectiveRValues applies the era multiplier. Good and excellent tiers mean the
// envelope was upgraded, so they override the code-era baseline.
func effectiveRValues(q InsulationQuality, era ConstructionEra) (wall, roof float64) {
	wall, roof = wallRValue[q], roofRValue[q]
	if q <= InsulationAverage {
		wall *= eraRFactor[era]
		roof *= eraRFactor[era]
	}
	return wall, roof
}

// hvacCapacityBTUh is the sensible capacity available for pull-down.
func hvacCapacityBTUh(t HVACType, age HVACAgeBand, floorAreaSqFt float64) float64 {
	return capacityPerSqFt[t] * floorAreaSqFt * sensibleHeatRatio * ageCapacityFactor[age]
}

func hvacCOP(t HVACType, age HVACAgeBand) float64 {
	return seasonalCOP[t] * ageEfficiencyFactor[age]
}
