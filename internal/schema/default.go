package schema

// defaultSections is the built-in depot-notes taxonomy used when no schema
// file is configured. Mirrors the survey flow an engineer walks on site, with
// "Future plans" closing the document.
var defaultSections = []CanonicalSection{
	{Name: "Needs", Description: "What the customer wants from the new system: comfort issues, hot water demand, priorities and budget signals.", Order: 1},
	{Name: "Existing system", Description: "Current boiler, cylinder and tank arrangement, age, condition and known faults.", Order: 2},
	{Name: "Boiler", Description: "Replacement boiler make, model, output and siting, including relocation notes.", Order: 3},
	{Name: "Cylinders", Description: "Hot water cylinder type, capacity, coil and siting, including removal of redundant cylinders.", Order: 4},
	{Name: "Radiators & pipework", Description: "Radiator changes, pipework routing, sizes and any upgrade from microbore.", Order: 5},
	{Name: "Controls", Description: "Thermostats, zone valves, programmers and smart controls to be fitted.", Order: 6},
	{Name: "Flue", Description: "Flue type, route, terminal position and clearances, including plume management.", Order: 7},
	{Name: "Condensate", Description: "Condensate run, termination point and frost protection.", Order: 8},
	{Name: "Gas supply", Description: "Meter position, pipe sizing and any run upgrades needed for the new appliance.", Order: 9},
	{Name: "Water supply", Description: "Mains pressure and flow readings, stopcock condition and incoming main notes.", Order: 10},
	{Name: "Electrics", Description: "Spur position, bonding and any electrical work required for controls or the appliance.", Order: 11},
	{Name: "Ventilation & clearances", Description: "Compartment ventilation, service clearances and access around the appliance.", Order: 12},
	{Name: "Access & parking", Description: "Parking, loft access, floorboards and anything that affects the install day.", Order: 13},
	{Name: FuturePlansSection, Description: "Anything the customer is planning that affects system sizing or siting: extensions, bathrooms, solar.", Order: 14},
}

// defaultChecklist is the built-in survey checklist catalog. Each item maps to
// a canonical section and carries the depot-note lines and materials emitted
// when the engineer checks it.
var defaultChecklist = []ChecklistItem{
	{
		ID: "flush-system", Group: "System health", Section: "Radiators & pipework",
		Label:           "Power flush required",
		PlainText:       "Power flush full system before commissioning.",
		NaturalLanguage: "We will flush the existing system through to remove sludge before the new boiler goes in.",
		Materials: []Material{
			{Category: "Chemicals", Item: "Central heating cleaner", Qty: 1},
			{Category: "Chemicals", Item: "System inhibitor", Qty: 1},
		},
	},
	{
		ID: "magnetic-filter", Group: "System health", Section: "Radiators & pipework",
		Label:           "Fit magnetic filter",
		PlainText:       "Fit magnetic filter on return.",
		NaturalLanguage: "A magnetic filter will be fitted on the return pipe to protect the new boiler.",
		Materials: []Material{
			{Category: "Fittings", Item: "Magnetic system filter 22mm", Qty: 1},
		},
	},
	{
		ID: "trv-upgrade", Group: "Controls", Section: "Controls",
		Label:           "Fit TRVs to all radiators",
		PlainText:       "Fit TRVs throughout.",
		NaturalLanguage: "Thermostatic valves will be fitted to every radiator so each room can be set individually.",
		Materials: []Material{
			{Category: "Controls", Item: "Thermostatic radiator valve", Qty: 8},
		},
	},
	{
		ID: "smart-stat", Group: "Controls", Section: "Controls",
		Label:           "Install smart thermostat",
		PlainText:       "Install smart room stat, pair to app.",
		NaturalLanguage: "A smart thermostat will be installed and set up on your phone before we leave.",
		Materials: []Material{
			{Category: "Controls", Item: "Smart thermostat kit", Qty: 1},
		},
	},
	{
		ID: "condensate-pump", Group: "Drainage", Section: "Condensate",
		Label:           "Condensate pump needed",
		PlainText:       "No gravity route for condensate, fit pump.",
		NaturalLanguage: "The boiler position has no natural drain nearby, so a small condensate pump will be fitted.",
		Materials: []Material{
			{Category: "Drainage", Item: "Condensate pump", Qty: 1},
			{Category: "Drainage", Item: "Overflow pipe 21.5mm x 3m", Qty: 2},
		},
	},
	{
		ID: "flue-plume-kit", Group: "Flue", Section: "Flue",
		Label:           "Plume management kit",
		PlainText:       "Fit plume kit to clear neighbouring window.",
		NaturalLanguage: "A plume deflector will carry the boiler's steam away from the neighbouring window.",
		Materials: []Material{
			{Category: "Flue", Item: "Plume management kit", Qty: 1},
		},
	},
	{
		ID: "gas-run-upgrade", Group: "Gas", Section: "Gas supply",
		Label:           "Upgrade gas run to 22mm",
		PlainText:       "Upgrade gas run meter to boiler in 22mm.",
		NaturalLanguage: "The gas pipe from the meter will be upgraded so the new boiler gets the supply it needs.",
		Materials: []Material{
			{Category: "Copper", Item: "22mm copper tube 3m", Qty: 4},
			{Category: "Fittings", Item: "22mm elbow", Qty: 8},
		},
	},
	{
		ID: "remove-tanks", Group: "Conversion", Section: "Existing system",
		Label:           "Remove loft tanks",
		PlainText:       "Drain and remove F&E and storage tanks from loft.",
		NaturalLanguage: "The old tanks in the loft will be drained, cut up and taken away.",
	},
	{
		ID: "scale-reducer", Group: "Water", Section: "Water supply",
		Label:           "Fit scale reducer",
		PlainText:       "Hard water area, fit inline scale reducer.",
		NaturalLanguage: "An inline scale reducer will protect the new system from limescale.",
		Materials: []Material{
			{Category: "Water treatment", Item: "Inline scale reducer 15mm", Qty: 1},
		},
	},
	{
		ID: "earth-bonding", Group: "Electrical", Section: "Electrics",
		Label:           "Main bonding required",
		PlainText:       "No main equipotential bonding visible, bond gas and water.",
		NaturalLanguage: "We will add the earth bonding cables that current regulations require.",
		Materials: []Material{
			{Category: "Electrical", Item: "10mm earth cable 10m", Qty: 1},
			{Category: "Electrical", Item: "Earth bonding clamp", Qty: 2},
		},
	},
}

// Default returns the built-in taxonomy. It never fails; a failure to build
// the default store is a programming error.
func Default() *Store {
	s, err := NewStore(defaultSections, defaultChecklist)
	if err != nil {
		panic("schema: default taxonomy invalid: " + err.Error())
	}
	return s
}
