package setback

// RateSource tells which utility signal produced the effective rate.
type RateSource string

const (
	RateExplicit RateSource = "explicit"
	RateFromBill RateSource = "bill"
	RateDefault  RateSource = "default"
)

const (
	weeksPerMonth = 4.345
	daysPerYear   = 365.25
)

// ResolveRate picks the $/kWh rate. Precedence is explicit rate, then the
// monthly bill over the policy baseline consumption, then the policy default.
// Signals are never blended.
func ResolveRate(u Utility, pol Policy) (float64, RateSource) {
	switch {
	case u.RateUSDPerKWh != nil:
		return *u.RateUSDPerKWh, RateExplicit
	case u.MonthlyBillUSD != nil:
		return *u.MonthlyBillUSD / pol.BaselineMonthlyKWh, RateFromBill
	default:
		return pol.DefaultRateUSDPerKWh, RateDefault
	}
}

// Period is an energy/cost figure over a day, month and year of absences.
type Period struct {
	KWhPerDay    float64 `json:"kwhPerDay"`
	CostPerDay   float64 `json:"costPerDay"`
	CostPerMonth float64 `json:"costPerMonth"`
	CostPerYear  float64 `json:"costPerYear"`
}

// Comparison sets the maintain strategy against the best setback for the
// same absence, whichever one was recommended.
type Comparison struct {
	Maintain Period `json:"maintain"`
	Setback  Period `json:"setback"`
	Savings  Period `json:"savings"`
}

// Costs is the estimator's output.
type Costs struct {
	RateUSDPerKWh float64
	RateSource    RateSource

	SavingsPerDayUSD     float64
	SavingsPerMonthUSD   float64
	SavingsPerYearUSD    float64
	EnergySavedKWhPerDay float64
	BaselineKWhPerDay    float64
	PercentSaved         float64

	Comparison Comparison
	Warnings   Warnings
}

// EstimateCosts turns the optimizer's degree-hour loads into kWh and dollars.
func EstimateCosts(s Strategy, in StrategyInput, daysPerWeek int, u Utility, pol Policy) (Costs, error) {
	if daysPerWeek < 1 || daysPerWeek > 7 {
		return Costs{}, invalidField("daysPerWeek", "must be within 1..7, got %d", daysPerWeek)
	}
	if err := u.Validate(); err != nil {
		return Costs{}, err
	}

	var c Costs
	c.RateUSDPerKWh, c.RateSource = ResolveRate(u, pol)
	if c.RateSource == RateDefault {
		c.Warnings.Add(WarningRateDefaulted)
	}

	// Older equipment spends more electricity per BTU removed.
	kwhPerDegreeHour := in.Thermal.ConductanceBTUhF / btuPerKWh / hvacCOP(in.HVACType, in.HVACAgeBand)

	maintainKWh := s.MaintainLoadDegreeHours * kwhPerDegreeHour
	chosenKWh := s.ChosenLoadDegreeHours * kwhPerDegreeHour
	c.EnergySavedKWhPerDay = maintainKWh - chosenKWh
	if c.EnergySavedKWhPerDay < 0 {
		c.EnergySavedKWhPerDay = 0
	}

	c.SavingsPerDayUSD = c.EnergySavedKWhPerDay * c.RateUSDPerKWh
	c.SavingsPerMonthUSD = perMonth(c.SavingsPerDayUSD, daysPerWeek)
	c.SavingsPerYearUSD = perYear(c.SavingsPerDayUSD, daysPerWeek)

	// Baseline is a full day held at the desired temperature.
	c.BaselineKWhPerDay = (in.OutdoorTempF - in.DesiredTempF) * 24 * kwhPerDegreeHour
	if c.BaselineKWhPerDay > 0 {
		c.PercentSaved = clamp(c.EnergySavedKWhPerDay/c.BaselineKWhPerDay*100, 0, 100)
	} else {
		c.Warnings.Add(WarningBaselineNonPositive)
	}

	setbackKWh := maintainKWh
	if s.Candidate != nil {
		setbackKWh = s.Candidate.LoadDegreeHours * kwhPerDegreeHour
	}
	c.Comparison = Comparison{
		Maintain: period(maintainKWh, c.RateUSDPerKWh, daysPerWeek),
		Setback:  period(setbackKWh, c.RateUSDPerKWh, daysPerWeek),
		Savings:  period(maintainKWh-setbackKWh, c.RateUSDPerKWh, daysPerWeek),
	}
	return c, nil
}

func period(kwh, rate float64, daysPerWeek int) Period {
	day := kwh * rate
	return Period{
		KWhPerDay:    kwh,
		CostPerDay:   day,
		CostPerMonth: perMonth(day, daysPerWeek),
		CostPerYear:  perYear(day, daysPerWeek),
	}
}

func perMonth(day float64, daysPerWeek int) float64 {
	return day * float64(daysPerWeek) * weeksPerMonth
}

// perYear scales by how often the absence pattern actually occurs.
func perYear(day float64, daysPerWeek int) float64 {
	return day * daysPerYear * float64(daysPerWeek) / 7
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
