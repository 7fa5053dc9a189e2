package recommend_test

import (
	"strings"
	"testing"

	"github.com/flueprint/flueprint/internal/recommend"
)

func findOption(t *testing.T, ranked []recommend.ScoredOption, key string) recommend.ScoredOption {
	t.Helper()
	for _, opt := range ranked {
		if opt.Profile.Key == key {
			return opt
		}
	}
	t.Fatalf("profile %q not in ranking", key)
	return recommend.ScoredOption{}
}

func TestScore_Bounds(t *testing.T) {
	engine := recommend.NewEngine(recommend.DefaultCatalog())

	cases := []struct {
		name string
		req  recommend.Requirements
	}{
		{"empty", recommend.Requirements{}},
		{"everything against", recommend.Requirements{
			Occupants: 10, Bathrooms: 4, MainsPressureBar: 0.5, MainsFlowLpm: 5,
			OpenVented: true, SpaceConstrained: true,
		}},
		{"everything for", recommend.Requirements{
			Occupants: 2, Bathrooms: 1, MainsPressureBar: 3, MainsFlowLpm: 25,
			SmartControls: true, Renewables: true, LowBudget: true,
			PreferredArchetype: "combi",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, p := range engine.Catalog() {
				score, _ := engine.Score(p, tc.req)
				if score < 0 || score > 150 {
					t.Errorf("Score(%s) = %v, outside [0, 150]", p.Key, score)
				}
			}
		})
	}
}

func TestScore_ClampsAtZero(t *testing.T) {
	engine := recommend.NewEngine(recommend.DefaultCatalog())
	req := recommend.Requirements{
		Occupants: 10, Bathrooms: 4, MainsPressureBar: 0.5, MainsFlowLpm: 5,
		OpenVented: true,
	}

	ranked := engine.Rank(req)
	combi := findOption(t, ranked, "combi")
	if combi.Score != 0 {
		t.Errorf("combi score = %v, want clamped to 0", combi.Score)
	}
}

func TestRank_Deterministic(t *testing.T) {
	engine := recommend.NewEngine(recommend.DefaultCatalog())
	req := recommend.Requirements{
		Occupants: 4, Bathrooms: 2, MainsPressureBar: 2.2, MainsFlowLpm: 21,
		SmartControls: true,
	}

	first := engine.Rank(req)
	second := engine.Rank(req)

	if len(first) != len(second) {
		t.Fatalf("rank lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Profile.Key != second[i].Profile.Key || first[i].Score != second[i].Score {
			t.Errorf("position %d differs across runs: %s/%v vs %s/%v",
				i, first[i].Profile.Key, first[i].Score, second[i].Profile.Key, second[i].Score)
		}
	}
}

func TestRank_TiesKeepCatalogOrder(t *testing.T) {
	// Identical profiles with no applicable rules all score the baseline;
	// declaration order must survive the sort.
	catalog := []recommend.SystemProfile{
		{Key: "a", Name: "A", EfficiencyRating: 90},
		{Key: "b", Name: "B", EfficiencyRating: 90},
		{Key: "c", Name: "C", EfficiencyRating: 90},
	}
	engine := recommend.NewEngine(catalog)

	ranked := engine.Rank(recommend.Requirements{})
	want := []string{"a", "b", "c"}
	for i, opt := range ranked {
		if opt.Profile.Key != want[i] {
			t.Errorf("position %d = %q, want %q", i, opt.Profile.Key, want[i])
		}
		if opt.Score != 100 {
			t.Errorf("%s score = %v, want baseline 100", opt.Profile.Key, opt.Score)
		}
	}
}

func TestScore_CombiOccupantMismatchScenario(t *testing.T) {
	engine := recommend.NewEngine(recommend.DefaultCatalog())
	req := recommend.Requirements{Occupants: 5, Bathrooms: 2, MainsPressureBar: 2.0}

	ranked := engine.Rank(req)
	combi := findOption(t, ranked, "combi")
	openVent := findOption(t, ranked, "regular-open-vent")

	foundMismatch := false
	for _, reason := range combi.Reasons {
		if strings.Contains(reason, "exceeds") && strings.Contains(reason, "occupants") {
			foundMismatch = true
		}
	}
	if !foundMismatch {
		t.Errorf("combi reasons %v missing occupant mismatch", combi.Reasons)
	}

	if combi.Score >= openVent.Score {
		t.Errorf("combi score %v not below open-vented score %v", combi.Score, openVent.Score)
	}
}

func TestScore_ExpertPreferenceDominates(t *testing.T) {
	engine := recommend.NewEngine(recommend.DefaultCatalog())

	// Low budget pushes the premium Mixergy well behind the combi.
	base := recommend.Requirements{LowBudget: true}
	baseRank := engine.Rank(base)
	combi := findOption(t, baseRank, "combi")
	mixergy := findOption(t, baseRank, "system-mixergy")
	gap := combi.Score - mixergy.Score
	if gap <= 0 || gap > 40 {
		t.Fatalf("scenario gap = %v, want Mixergy trailing by up to 40", gap)
	}

	base.PreferredArchetype = "system-mixergy"
	ranked := engine.Rank(base)
	if ranked[0].Profile.Key != "system-mixergy" {
		t.Errorf("top profile = %q, want system-mixergy with expert preference", ranked[0].Profile.Key)
	}

	preferred := findOption(t, ranked, "system-mixergy")
	found := false
	for _, reason := range preferred.Reasons {
		if strings.Contains(reason, "recommended") {
			found = true
		}
	}
	if !found {
		t.Errorf("reasons %v missing expert recommendation", preferred.Reasons)
	}
}

func TestScore_OpenVentedConversion(t *testing.T) {
	engine := recommend.NewEngine(recommend.DefaultCatalog())
	req := recommend.Requirements{OpenVented: true}

	ranked := engine.Rank(req)
	openVent := findOption(t, ranked, "regular-open-vent")
	unvented := findOption(t, ranked, "system-unvented")

	// +15 like-for-like vs -15 conversion, on top of the efficiency nudge.
	if openVent.Score != 100+15-0.5 {
		t.Errorf("open-vented score = %v, want 114.5", openVent.Score)
	}
	if unvented.Score != 100-15+1 {
		t.Errorf("unvented score = %v, want 86", unvented.Score)
	}
}

func TestScore_RenewablesBoostsOnlySupportingArchetypes(t *testing.T) {
	engine := recommend.NewEngine(recommend.DefaultCatalog())
	base := engine.Rank(recommend.Requirements{})
	with := engine.Rank(recommend.Requirements{Renewables: true})

	wantDelta := map[string]float64{
		"combi":             0,
		"system-unvented":   0,
		"regular-open-vent": 0,
		"system-mixergy":    10,
		"ashp-cylinder":     20,
	}
	for key, want := range wantDelta {
		got := findOption(t, with, key).Score - findOption(t, base, key).Score
		if got != want {
			t.Errorf("%s renewables delta = %v, want %v", key, got, want)
		}
	}
}

func TestTopTiers_AssignsByPosition(t *testing.T) {
	engine := recommend.NewEngine(recommend.DefaultCatalog())
	tiers := engine.TopTiers(recommend.Requirements{Occupants: 2, MainsPressureBar: 2.5}, 0)

	if len(tiers) != 3 {
		t.Fatalf("tier count = %d, want default 3", len(tiers))
	}
	want := []recommend.Tier{recommend.TierGold, recommend.TierSilver, recommend.TierBronze}
	for i, opt := range tiers {
		if opt.Tier != want[i] {
			t.Errorf("position %d tier = %q, want %q", i, opt.Tier, want[i])
		}
	}
	if tiers[0].Score < tiers[1].Score || tiers[1].Score < tiers[2].Score {
		t.Error("tiers are not in descending score order")
	}
}

func TestTopTiers_RepeatsLastWhenCatalogShort(t *testing.T) {
	catalog := recommend.DefaultCatalog()[:2]
	engine := recommend.NewEngine(catalog)

	tiers := engine.TopTiers(recommend.Requirements{}, 3)
	if len(tiers) != 3 {
		t.Fatalf("tier count = %d, want 3", len(tiers))
	}
	if tiers[2].Profile.Key != tiers[1].Profile.Key {
		t.Errorf("bronze = %q, want repeat of %q", tiers[2].Profile.Key, tiers[1].Profile.Key)
	}
	if tiers[2].Tier != recommend.TierBronze {
		t.Errorf("third tier = %q, want bronze", tiers[2].Tier)
	}
}
