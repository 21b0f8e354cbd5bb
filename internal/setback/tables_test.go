package setback

import "testing"

func TestRValuesOrdered(t *testing.T) {
	for era := EraBefore1980; era <= EraAfter2010; era++ {
		prevWall, prevRoof := 0.0, 0.0
		for q := InsulationPoor; q <= InsulationExcellent; q++ {
			wall, roof := effectiveRValues(q, era)
			if wall <= prevWall || roof <= prevRoof {
				t.Fatalf("era %s: R(%s)=(%v,%v) not above (%v,%v)", era, q, wall, roof, prevWall, prevRoof)
			}
			prevWall, prevRoof = wall, roof
		}
	}
}

func TestEraPenaltyOnlyForBaselineTiers(t *testing.T) {
	old, _ := effectiveRValues(InsulationAverage, EraBefore1980)
	recent, _ := effectiveRValues(InsulationAverage, Era2000To2010)
	if old >= recent {
		t.Fatalf("pre-1980 average wall R %v should be below 2000s %v", old, recent)
	}
	oldGood, _ := effectiveRValues(InsulationGood, EraBefore1980)
	recentGood, _ := effectiveRValues(InsulationGood, Era2000To2010)
	if oldGood != recentGood {
		t.Fatalf("good insulation should override era: %v vs %v", oldGood, recentGood)
	}
}

func TestAgeingDegradesEquipment(t *testing.T) {
	for a := AgeUnder5; a < Age15Plus; a++ {
		next := a + 1
		if ageCapacityFactor[next] >= ageCapacityFactor[a] {
			t.Errorf("capacity factor should drop from %s to %s", a, next)
		}
		if ageEfficiencyFactor[next] >= ageEfficiencyFactor[a] {
			t.Errorf("efficiency factor should drop from %s to %s", a, next)
		}
		if ageRecoveryPenalty[next] <= ageRecoveryPenalty[a] {
			t.Errorf("recovery penalty should grow from %s to %s", a, next)
		}
	}
}

func TestTablesCoverEveryEnumValue(t *testing.T) {
	for h := HVACCentralAC; h <= HVACDuctless; h++ {
		if capacityPerSqFt[h] <= 0 || seasonalCOP[h] <= 0 || restartMinutes[h] <= 0 {
			t.Errorf("hvac %s has a zero coefficient", h)
		}
	}
	for w := WindowSinglePane; w <= WindowLowE; w++ {
		if windowUFactor[w] <= 0 {
			t.Errorf("window %s has no U-factor", w)
		}
	}
	for c := ConstructionWoodFrame; c <= ConstructionMixed; c++ {
		if massPerCuFt[c] <= 0 {
			t.Errorf("construction %s has no mass factor", c)
		}
	}
	for h := HomeSingleFamily; h <= HomeCondo; h++ {
		if wallExposure[h] <= 0 || roofExposure[h] <= 0 || defaultDoors[h] <= 0 {
			t.Errorf("home type %s has a zero coefficient", h)
		}
	}
}
