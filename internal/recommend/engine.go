// Package recommend ranks heating-system archetypes against a property's
// requirements.
//
// Scoring is deterministic and stateless: every rule fires independently off
// a baseline of 100 points, appending a human-readable justification whenever
// it triggers, and the final score is clamped to [0, 150]. The upper bound
// leaves headroom for the expert-preference bonus, which is deliberately
// large enough to dominate the ordinary rule set. Ties rank in catalog
// declaration order.
package recommend

import (
	"fmt"
	"slices"
)

const (
	baselineScore = 100
	minScore      = 0
	maxScore      = 150

	// expertPreferenceBonus dominates every other adjustment so a surveyor's
	// explicit recommendation always ranks first against a gap of up to 40
	// points.
	expertPreferenceBonus = 50
)

// Tier labels a ranked option by position.
type Tier string

const (
	TierGold   Tier = "gold"
	TierSilver Tier = "silver"
	TierBronze Tier = "bronze"
)

// tierByPosition maps rank position to tier; positions past the end reuse
// the last tier.
var tierByPosition = []Tier{TierGold, TierSilver, TierBronze}

// ScoredOption is one catalog profile with its score and the justifications
// that produced it.
type ScoredOption struct {
	Profile SystemProfile `json:"profile"`
	Score   float64       `json:"score"`
	Reasons []string      `json:"reasons"`
}

// TieredOption is a ScoredOption with its rank-position tier.
type TieredOption struct {
	ScoredOption
	Tier Tier `json:"tier"`
}

// Engine scores and ranks a fixed profile catalog. It holds no mutable state
// and is safe for concurrent use.
type Engine struct {
	catalog []SystemProfile
}

// NewEngine returns an [Engine] over the given catalog. The catalog's
// declaration order is the ranking tie-break order. An empty catalog yields
// an engine whose Rank and TopTiers return nil.
func NewEngine(catalog []SystemProfile) *Engine {
	return &Engine{catalog: slices.Clone(catalog)}
}

// Catalog returns the engine's profile catalog in declaration order.
func (e *Engine) Catalog() []SystemProfile {
	return slices.Clone(e.catalog)
}

// Score applies the full rule set to one profile. Every applicable rule
// fires; rules never short-circuit each other. Unknown requirement values
// (zero) skip their rule entirely.
func (e *Engine) Score(p SystemProfile, req Requirements) (float64, []string) {
	score := float64(baselineScore)
	var reasons []string

	add := func(delta float64, format string, args ...any) {
		score += delta
		reasons = append(reasons, fmt.Sprintf(format, args...))
	}

	// Household size against the archetype's design ceiling.
	if p.MaxOccupants > 0 && req.Occupants > 0 {
		if req.Occupants > p.MaxOccupants {
			add(-30, "household of %d exceeds the %s design ceiling of %d occupants", req.Occupants, p.Name, p.MaxOccupants)
		} else {
			add(+10, "household of %d suits an on-demand system", req.Occupants)
		}
	}

	// Simultaneous hot water demand.
	if p.MaxBathrooms > 0 && req.Bathrooms > p.MaxBathrooms {
		add(-25, "%d bathrooms exceed what a %s can serve at once", req.Bathrooms, p.Name)
	}

	// Mains pressure against the archetype minimum.
	if p.MinPressureBar > 0 && req.MainsPressureBar > 0 {
		switch {
		case req.MainsPressureBar < p.MinPressureBar*0.75:
			add(-40, "mains pressure of %.1f bar is well below the %.1f bar minimum", req.MainsPressureBar, p.MinPressureBar)
		case req.MainsPressureBar < p.MinPressureBar:
			add(-20, "mains pressure of %.1f bar is below the %.1f bar minimum", req.MainsPressureBar, p.MinPressureBar)
		default:
			add(+10, "mains pressure of %.1f bar meets the requirement", req.MainsPressureBar)
		}
	}

	// Mains flow against the archetype minimum.
	if p.MinFlowLpm > 0 && req.MainsFlowLpm > 0 {
		switch {
		case req.MainsFlowLpm < p.MinFlowLpm*0.75:
			add(-35, "flow rate of %.0f l/min is well below the %.0f l/min minimum", req.MainsFlowLpm, p.MinFlowLpm)
		case req.MainsFlowLpm < p.MinFlowLpm:
			add(-20, "flow rate of %.0f l/min is below the %.0f l/min minimum", req.MainsFlowLpm, p.MinFlowLpm)
		default:
			add(+15, "flow rate of %.0f l/min meets the requirement", req.MainsFlowLpm)
		}
	}

	// Conversion friction from an open-vented system.
	if req.OpenVented {
		if p.Sealed {
			add(-15, "converting from open vented to sealed adds pipework and system checks")
		} else {
			add(+15, "like-for-like open-vented replacement keeps the install simple")
		}
	}

	// Space constraints.
	if req.SpaceConstrained {
		if p.Compact {
			add(+20, "compact footprint suits the limited space")
		}
		if p.NeedsLoftTank {
			add(-25, "loft feed tanks conflict with the limited space")
		}
	}

	// Smart controls interest.
	if req.SmartControls && p.SmartBonus > 0 {
		add(p.SmartBonus, "supports the smart controls the household wants")
	}

	// Renewables interest.
	if req.Renewables && p.RenewablesBonus > 0 {
		add(p.RenewablesBonus, "offers a route to the renewables the household is considering")
	}

	// Budget priority.
	if req.LowBudget && p.BudgetAdjust != 0 {
		if p.BudgetAdjust > 0 {
			add(p.BudgetAdjust, "lower install cost fits the stated budget")
		} else {
			add(p.BudgetAdjust, "premium install cost works against the stated budget")
		}
	}

	// Explicit expert preference dominates all other adjustments.
	if req.PreferredArchetype != "" && req.PreferredArchetype == p.Key {
		add(expertPreferenceBonus, "surveyor explicitly recommended this system")
	}

	// Continuous efficiency nudge, applied last.
	if nudge := (p.EfficiencyRating - 90) * 0.5; nudge != 0 {
		add(nudge, "efficiency rating of %.0f", p.EfficiencyRating)
	}

	return clamp(score), reasons
}

// Rank scores every catalog profile and returns them descending by score.
// The sort is stable, so equal scores keep catalog declaration order.
// Identical inputs always produce identical output.
func (e *Engine) Rank(req Requirements) []ScoredOption {
	if len(e.catalog) == 0 {
		return nil
	}

	out := make([]ScoredOption, 0, len(e.catalog))
	for _, p := range e.catalog {
		score, reasons := e.Score(p, req)
		out = append(out, ScoredOption{Profile: p, Score: score, Reasons: reasons})
	}

	slices.SortStableFunc(out, func(a, b ScoredOption) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	return out
}

// TopTiers returns the first n ranked options labelled Gold, Silver, Bronze
// by position. n defaults to 3 when non-positive. When the catalog holds
// fewer than n profiles, the last option is repeated so every tier is filled.
func (e *Engine) TopTiers(req Requirements, n int) []TieredOption {
	if n <= 0 {
		n = 3
	}

	ranked := e.Rank(req)
	if len(ranked) == 0 {
		return nil
	}

	out := make([]TieredOption, 0, n)
	for i := 0; i < n; i++ {
		opt := ranked[min(i, len(ranked)-1)]
		tier := tierByPosition[min(i, len(tierByPosition)-1)]
		out = append(out, TieredOption{ScoredOption: opt, Tier: tier})
	}
	return out
}

func clamp(score float64) float64 {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}
