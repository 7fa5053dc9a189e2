package recommend

// Requirements is the normalized description of a property and its household
// used as scoring input. Records are built fresh per analysis, either by
// [ExtractRequirements] or by the gateway's requirements-extraction task, and
// are never mutated by the engine.
//
// Zero values mean "unknown": a rule whose input is unknown does not fire in
// either direction.
type Requirements struct {
	// Occupants is the household size.
	Occupants int `json:"occupants"`

	// Bathrooms counts bathrooms with showers or baths.
	Bathrooms int `json:"bathrooms"`

	// Bedrooms counts bedrooms; used as a proxy when occupancy is unstated.
	Bedrooms int `json:"bedrooms"`

	// MainsPressureBar is the measured standing pressure.
	MainsPressureBar float64 `json:"mainsPressureBar"`

	// MainsFlowLpm is the measured mains flow rate.
	MainsFlowLpm float64 `json:"mainsFlowLpm"`

	// CurrentSystem is the installed system type: "combi", "system",
	// "regular", "back-boiler", "electric", or "" when unknown.
	CurrentSystem string `json:"currentSystem"`

	// OpenVented is true when the current system is fed from loft tanks.
	OpenVented bool `json:"openVented"`

	// SpaceConstrained is true when the property lacks cylinder or tank space.
	SpaceConstrained bool `json:"spaceConstrained"`

	// SmartControls is true when the household wants app-controlled heating.
	SmartControls bool `json:"smartControls"`

	// Renewables is true when the household is considering solar or a heat
	// pump.
	Renewables bool `json:"renewables"`

	// LowBudget is true when cost is the stated priority.
	LowBudget bool `json:"lowBudget"`

	// PreferredArchetype is the catalog key of an archetype the surveyor
	// explicitly recommended, or "" when none was stated.
	PreferredArchetype string `json:"preferredArchetype"`
}
