package setback

// ThermalParameters is the lumped first-order model of a building.
type ThermalParameters struct {
	// ConductanceBTUhF is UA, the heat flow per degree of indoor/outdoor difference.
	ConductanceBTUhF float64
	// ResistanceFhBTU is R = 1/UA.
	ResistanceFhBTU float64
	// CapacitanceBTUF is C, the heat needed to move the indoor temperature one degree.
	CapacitanceBTUF float64
	// TauHours is R·C, after clamping.
	TauHours float64
	// UnclampedTauHours is R·C as derived from the profile.
	UnclampedTauHours float64
	Clamped           bool

	Envelope Envelope
}

// BuildThermalParameters derives R, C and τ from a building profile.
func BuildThermalParameters(p BuildingProfile, pol Policy) (ThermalParameters, error) {
	if err := p.Validate(); err != nil {
		return ThermalParameters{}, err
	}
	env, err := resolveEnvelope(p, pol)
	if err != nil {
		return ThermalParameters{}, err
	}

	wallR, roofR := effectiveRValues(p.InsulationQuality, p.ConstructionEra)
	volume := p.VolumeCuFt()

	ua := env.OpaqueWallArea()/wallR +
		env.RoofArea.Value/roofR +
		env.WindowArea.Value*windowUFactor[p.WindowType] +
		env.DoorArea.Value*doorUFactor +
		infiltrationBTUPerCuFtF*volume*eraACH[p.ConstructionEra]

	r := 1 / ua
	c := volume * massPerCuFt[p.ConstructionType]
	tau := r * c

	tp := ThermalParameters{
		ConductanceBTUhF:  ua,
		ResistanceFhBTU:   r,
		CapacitanceBTUF:   c,
		TauHours:          tau,
		UnclampedTauHours: tau,
		Envelope:          env,
	}

	// Sparse inputs can extrapolate far outside what a lumped model describes;
	// hold τ to the policy range and keep R·C = τ by adjusting C.
	switch {
	case tau < pol.TauMinHours:
		tp.TauHours, tp.Clamped = pol.TauMinHours, true
	case tau > pol.TauMaxHours:
		tp.TauHours, tp.Clamped = pol.TauMaxHours, true
	}
	if tp.Clamped {
		tp.CapacitanceBTUF = tp.TauHours / r
	}
	return tp, nil
}
