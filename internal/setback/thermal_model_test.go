package setback

import (
	"errors"
	"testing"
)

func TestTauIncreasesWithInsulation(t *testing.T) {
	prev := 0.0
	for q := InsulationPoor; q <= InsulationExcellent; q++ {
		tp := mustThermal(t, newTestProfile(func(p *BuildingProfile) { p.InsulationQuality = q }))
		if tp.TauHours <= prev {
			t.Fatalf("tau(%s)=%v, want > %v", q, tp.TauHours, prev)
		}
		prev = tp.TauHours
	}
}

func TestTauMonotonicAcrossEras(t *testing.T) {
	for era := EraBefore1980; era <= EraAfter2010; era++ {
		prev := 0.0
		for q := InsulationPoor; q <= InsulationExcellent; q++ {
			tp := mustThermal(t, newTestProfile(func(p *BuildingProfile) {
				p.InsulationQuality = q
				p.ConstructionEra = era
			}))
			if tp.TauHours <= prev {
				t.Fatalf("era %s: tau(%s)=%v, want > %v", era, q, tp.TauHours, prev)
			}
			prev = tp.TauHours
		}
	}
}

func TestTauForReferenceHome(t *testing.T) {
	tp := mustThermal(t, newTestProfile())
	if tp.TauHours < 2 || tp.TauHours > 6 {
		t.Fatalf("tau=%v, want within [2, 6]", tp.TauHours)
	}
	if tp.Clamped {
		t.Fatalf("reference home should not be clamped")
	}
	if !almostEqual(tp.ResistanceFhBTU*tp.CapacitanceBTUF, tp.TauHours, 1e-9) {
		t.Fatalf("R*C=%v, tau=%v", tp.ResistanceFhBTU*tp.CapacitanceBTUF, tp.TauHours)
	}
	if !almostEqual(tp.ConductanceBTUhF, 461.56, 0.05) {
		t.Fatalf("UA=%v, want ~461.56", tp.ConductanceBTUhF)
	}
}

func TestThermalMassRaisesTau(t *testing.T) {
	wood := mustThermal(t, newTestProfile())
	for _, c := range []ConstructionType{ConstructionBrick, ConstructionConcrete, ConstructionMixed} {
		tp := mustThermal(t, newTestProfile(func(p *BuildingProfile) { p.ConstructionType = c }))
		if tp.TauHours <= wood.TauHours {
			t.Errorf("tau(%s)=%v, want > wood frame %v", c, tp.TauHours, wood.TauHours)
		}
	}
}

func TestWindowLeakageLowersTau(t *testing.T) {
	single := mustThermal(t, newTestProfile(func(p *BuildingProfile) { p.WindowType = WindowSinglePane }))
	triple := mustThermal(t, newTestProfile(func(p *BuildingProfile) { p.WindowType = WindowTriplePane }))
	if single.TauHours >= triple.TauHours {
		t.Fatalf("single pane tau %v should be below triple pane %v", single.TauHours, triple.TauHours)
	}

	small := mustThermal(t, newTestProfile(func(p *BuildingProfile) { p.WindowAreaPercent = ptr(5.0) }))
	large := mustThermal(t, newTestProfile(func(p *BuildingProfile) { p.WindowAreaPercent = ptr(30.0) }))
	if large.TauHours >= small.TauHours {
		t.Fatalf("30%% glazing tau %v should be below 5%% glazing %v", large.TauHours, small.TauHours)
	}
}

func TestDoorAreaLowersTau(t *testing.T) {
	none := mustThermal(t, newTestProfile(func(p *BuildingProfile) { p.TotalDoorAreaSqFt = ptr(0.0) }))
	many := mustThermal(t, newTestProfile(func(p *BuildingProfile) { p.NumExteriorDoors = ptr(4) }))
	if many.TauHours >= none.TauHours {
		t.Fatalf("4 doors tau %v should be below no doors %v", many.TauHours, none.TauHours)
	}
}

func TestSharedWallsRaiseTau(t *testing.T) {
	house := mustThermal(t, newTestProfile())
	flat := mustThermal(t, newTestProfile(func(p *BuildingProfile) { p.HomeType = HomeApartment }))
	if flat.TauHours <= house.TauHours {
		t.Fatalf("apartment tau %v should be above single-family %v", flat.TauHours, house.TauHours)
	}
}

func TestTauClamping(t *testing.T) {
	pol := DefaultPolicy()
	tests := []struct {
		name    string
		profile BuildingProfile
		want    float64
	}{
		{
			name: "leaky glass box clamps to minimum",
			profile: newTestProfile(func(p *BuildingProfile) {
				p.FloorAreaSqFt = 500
				p.WallAreaSqFt = ptr(5000.0)
				p.WindowAreaPercent = ptr(50.0)
				p.WindowType = WindowSinglePane
				p.InsulationQuality = InsulationPoor
				p.ConstructionEra = EraBefore1980
			}),
			want: pol.TauMinHours,
		},
		{
			name: "massive tight apartment block clamps to maximum",
			profile: newTestProfile(func(p *BuildingProfile) {
				p.FloorAreaSqFt = 20000
				p.CeilingHeightFt = 20
				p.HomeType = HomeApartment
				p.ConstructionType = ConstructionConcrete
				p.ConstructionEra = EraAfter2010
				p.InsulationQuality = InsulationExcellent
				p.WindowType = WindowTriplePane
			}),
			want: pol.TauMaxHours,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, err := BuildThermalParameters(tt.profile, pol)
			if err != nil {
				t.Fatalf("BuildThermalParameters() failed: %v", err)
			}
			if !tp.Clamped {
				t.Fatalf("expected clamping, unclamped tau=%v", tp.UnclampedTauHours)
			}
			if tp.TauHours != tt.want {
				t.Fatalf("tau=%v, want %v", tp.TauHours, tt.want)
			}
			if !almostEqual(tp.ResistanceFhBTU*tp.CapacitanceBTUF, tp.TauHours, 1e-9) {
				t.Fatalf("R*C=%v does not match clamped tau %v", tp.ResistanceFhBTU*tp.CapacitanceBTUF, tp.TauHours)
			}
		})
	}
}

func TestBuildThermalParametersInvalidProfile(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*BuildingProfile)
		wantField string
	}{
		{"zero floor area", func(p *BuildingProfile) { p.FloorAreaSqFt = 0 }, "floorAreaSqFt"},
		{"negative ceiling", func(p *BuildingProfile) { p.CeilingHeightFt = -8 }, "ceilingHeightFt"},
		{"unknown home type", func(p *BuildingProfile) { p.HomeType = HomeUnknown }, "homeType"},
		{"unknown construction", func(p *BuildingProfile) { p.ConstructionType = ConstructionType(42) }, "constructionType"},
		{"unknown era", func(p *BuildingProfile) { p.ConstructionEra = EraUnknown }, "constructionEra"},
		{"unknown insulation", func(p *BuildingProfile) { p.InsulationQuality = InsulationUnknown }, "insulationQuality"},
		{"unknown window", func(p *BuildingProfile) { p.WindowType = WindowUnknown }, "windowType"},
		{"unknown hvac", func(p *BuildingProfile) { p.HVACType = HVACUnknown }, "hvacType"},
		{"unknown hvac age", func(p *BuildingProfile) { p.HVACAgeBand = AgeUnknown }, "hvacAgeBand"},
		{"window percent above 100", func(p *BuildingProfile) { p.WindowAreaPercent = ptr(120.0) }, "windowAreaPercent"},
		{"negative doors", func(p *BuildingProfile) { p.NumExteriorDoors = ptr(-1) }, "numExteriorDoors"},
		{"openings exceed wall", func(p *BuildingProfile) {
			p.WindowAreaPercent = ptr(90.0)
			p.TotalDoorAreaSqFt = ptr(500.0)
		}, "totalDoorAreaSqFt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildThermalParameters(newTestProfile(tt.mutate), DefaultPolicy())
			if !errors.Is(err, ErrInvalidProfile) {
				t.Fatalf("expected ErrInvalidProfile, got %v", err)
			}
			var ipe *InvalidProfileError
			if !errors.As(err, &ipe) {
				t.Fatalf("expected *InvalidProfileError, got %T", err)
			}
			if ipe.Field != tt.wantField {
				t.Fatalf("field=%q, want %q", ipe.Field, tt.wantField)
			}
		})
	}
}
