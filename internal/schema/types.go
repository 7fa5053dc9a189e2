// Package schema holds the depot-notes taxonomy: the ordered list of canonical
// section descriptors and the checklist-item catalog, plus the resolver that
// maps free-form section labels back onto canonical names.
//
// The taxonomy is closed: every section name referenced anywhere else in the
// pipeline must resolve to one of the canonical names or be dropped. One
// designated section ("Future plans") is always present and always ordered
// last so the engineer's forward-looking notes end the document.
//
// A [Store] is read-only after construction; schema edits replace the store
// wholesale rather than mutating it in place, so concurrent readers never see
// a partially updated taxonomy.
package schema

// FuturePlansSection is the canonical section that is always present and
// always ordered last.
const FuturePlansSection = "Future plans"

// CanonicalSection is one authoritative category in the depot-notes taxonomy.
type CanonicalSection struct {
	// Name uniquely identifies the section (e.g. "Needs", "Flue").
	Name string `yaml:"name" json:"name"`

	// Description tells the model (and the engineer) what belongs in this
	// section.
	Description string `yaml:"description" json:"description"`

	// Order positions the section in rendered output. Sections are sorted
	// ascending; FuturePlansSection is re-pinned last regardless of its
	// declared order.
	Order int `yaml:"order" json:"order"`
}

// Material is a free-standing supply line aggregated from checked items or
// model extraction. Materials have no identity beyond structural equality and
// duplicates are allowed — the list is an aggregation, not a set.
type Material struct {
	// Category groups the line on the depot sheet (e.g. "Copper", "Fittings").
	Category string `yaml:"category" json:"category"`

	// Item is the supply description.
	Item string `yaml:"item" json:"item"`

	// Qty is the count required, always at least 1.
	Qty int `yaml:"qty" json:"qty"`

	// Notes carries free-text qualifiers (e.g. "22mm", "check stock").
	Notes string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// ChecklistItem is one entry in the static survey checklist catalog.
// Items are selected or deselected by the engineer in the surrounding
// application; this core only reads the catalog.
type ChecklistItem struct {
	// ID uniquely identifies the item across the whole catalog.
	ID string `yaml:"id" json:"id"`

	// Group is the checklist heading the item appears under.
	Group string `yaml:"group" json:"group"`

	// Section names the CanonicalSection this item's notes belong to.
	Section string `yaml:"section" json:"section"`

	// Label is the short text shown next to the checkbox.
	Label string `yaml:"label" json:"label"`

	// PlainText is the terse depot-note line emitted when the item is checked.
	PlainText string `yaml:"plainText" json:"plainText"`

	// NaturalLanguage is the customer-facing phrasing of the same note.
	NaturalLanguage string `yaml:"naturalLanguage" json:"naturalLanguage"`

	// Materials lists the supplies implied by checking this item.
	Materials []Material `yaml:"materials,omitempty" json:"materials,omitempty"`
}
