package recommend

// CostTier buckets install cost for budget scoring.
type CostTier int

const (
	// CostBudget marks the cheapest archetypes to install.
	CostBudget CostTier = iota + 1
	// CostMid marks mid-range install cost.
	CostMid
	// CostPremium marks the most expensive archetypes to install.
	CostPremium
)

// SystemProfile is one heating-system archetype in the recommendation
// catalog. Profiles are read-only reference data; the engine never mutates
// them.
//
// Threshold fields use zero to mean "no constraint": a profile with
// MaxOccupants 0 has no occupant ceiling, and a MinPressureBar of 0 skips the
// pressure rule entirely.
type SystemProfile struct {
	// Key identifies the archetype (e.g. "combi", "system-mixergy").
	Key string `json:"key"`

	// Name is the customer-facing archetype name.
	Name string `json:"name"`

	// Description is a one-paragraph summary for the options sheet.
	Description string `json:"description"`

	// EfficiencyRating is the nominal system efficiency on a 0-100 scale.
	EfficiencyRating float64 `json:"efficiencyRating"`

	// Cost is the install-cost tier.
	Cost CostTier `json:"costTier"`

	// LifespanYears is the expected service life.
	LifespanYears int `json:"lifespanYears"`

	// MaxOccupants is the design ceiling for household size, 0 = unlimited.
	MaxOccupants int `json:"maxOccupants"`

	// MaxBathrooms is the simultaneous-demand ceiling, 0 = unlimited.
	MaxBathrooms int `json:"maxBathrooms"`

	// MinPressureBar is the minimum standing mains pressure, 0 = no minimum.
	MinPressureBar float64 `json:"minPressureBar"`

	// MinFlowLpm is the minimum mains flow rate, 0 = no minimum.
	MinFlowLpm float64 `json:"minFlowLpm"`

	// Sealed is true for pressurized systems fed directly from the mains.
	Sealed bool `json:"sealed"`

	// NeedsLoftTank is true for archetypes that keep a feed tank in the loft.
	NeedsLoftTank bool `json:"needsLoftTank"`

	// Compact is true for archetypes with no cylinder or tank footprint.
	Compact bool `json:"compact"`

	// SmartBonus is the points awarded when the household wants smart
	// controls, 0 = archetype does not support them meaningfully.
	SmartBonus float64 `json:"smartBonus"`

	// RenewablesBonus is the points awarded when the household is considering
	// renewables, 0 = archetype offers no renewables path.
	RenewablesBonus float64 `json:"renewablesBonus"`

	// BudgetAdjust is the points delta applied when the household flags a
	// low budget: positive for cheap archetypes, negative for premium ones.
	BudgetAdjust float64 `json:"budgetAdjust"`

	// Strengths and Limitations feed the customer options sheet.
	Strengths   []string `json:"strengths"`
	Limitations []string `json:"limitations"`
}

// DefaultCatalog returns the five-archetype catalog in declaration order.
// Declaration order is the tie-break order for ranking, so reordering entries
// changes results.
func DefaultCatalog() []SystemProfile {
	return []SystemProfile{
		{
			Key:              "combi",
			Name:             "Combi boiler",
			Description:      "A single wall-hung unit heating water on demand straight from the mains. No cylinder, no tanks.",
			EfficiencyRating: 94,
			Cost:             CostBudget,
			LifespanYears:    12,
			MaxOccupants:     3,
			MaxBathrooms:     1,
			MinPressureBar:   1.5,
			MinFlowLpm:       12,
			Sealed:           true,
			Compact:          true,
			SmartBonus:       10,
			BudgetAdjust:     15,
			Strengths: []string{
				"Smallest footprint of any option",
				"Unlimited hot water on demand",
				"Cheapest to install",
			},
			Limitations: []string{
				"Struggles with two outlets running at once",
				"Needs good mains pressure and flow",
			},
		},
		{
			Key:              "system-unvented",
			Name:             "System boiler with unvented cylinder",
			Description:      "A sealed system boiler feeding a pressurized hot water cylinder, serving several outlets at mains pressure.",
			EfficiencyRating: 92,
			Cost:             CostMid,
			LifespanYears:    15,
			MinPressureBar:   1.5,
			MinFlowLpm:       20,
			Sealed:           true,
			Strengths: []string{
				"Strong flow to several bathrooms at once",
				"No loft tanks",
				"Solar-thermal ready cylinder coils available",
			},
			Limitations: []string{
				"Needs cylinder space and annual discharge checks",
				"Dependent on mains pressure",
			},
		},
		{
			Key:              "regular-open-vent",
			Name:             "Regular boiler, open vented",
			Description:      "A heat-only boiler with loft feed tanks and a vented cylinder. Like-for-like swap for most older gravity systems.",
			EfficiencyRating: 89,
			Cost:             CostBudget,
			LifespanYears:    15,
			NeedsLoftTank:    true,
			BudgetAdjust:     10,
			Strengths: []string{
				"Works on poor mains pressure",
				"Cheapest swap for an existing open-vented system",
				"Tolerant of older radiators and pipework",
			},
			Limitations: []string{
				"Loft tanks take space and can freeze",
				"Lower shower pressure without a pump",
			},
		},
		{
			Key:              "system-mixergy",
			Name:             "System boiler with Mixergy smart cylinder",
			Description:      "A sealed system boiler paired with a Mixergy stratifying cylinder: app-controlled, heats only the water you need.",
			EfficiencyRating: 96,
			Cost:             CostPremium,
			LifespanYears:    15,
			MinPressureBar:   1.5,
			MinFlowLpm:       20,
			Sealed:           true,
			SmartBonus:       20,
			RenewablesBonus:  10,
			BudgetAdjust:     -15,
			Strengths: []string{
				"Heats a top slice of the cylinder in minutes",
				"Full app control and usage learning",
				"PV-diverter and heat-pump ready",
			},
			Limitations: []string{
				"Premium cylinder price",
				"Needs cylinder space and good mains",
			},
		},
		{
			Key:              "ashp-cylinder",
			Name:             "Air source heat pump with cylinder",
			Description:      "An air source heat pump with a high-volume unvented cylinder. The renewables route, sized for well-insulated homes.",
			EfficiencyRating: 98,
			Cost:             CostPremium,
			LifespanYears:    20,
			MinPressureBar:   1.5,
			MinFlowLpm:       20,
			Sealed:           true,
			RenewablesBonus:  20,
			BudgetAdjust:     -20,
			Strengths: []string{
				"Lowest running carbon of any option",
				"Grant funding available",
				"Very long service life",
			},
			Limitations: []string{
				"Highest install cost",
				"Needs outdoor unit space and larger radiators",
			},
		},
	}
}
