package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/flueprint/flueprint/internal/schema"
)

// KeyKind identifies the expected JSON shape of a task output key and the
// safety default used when the model omits or mistypes the value.
type KeyKind int

const (
	// KindSections is an array of depot section entries. Default: empty array.
	// Entries are resolved against the canonical section taxonomy; after
	// normalization the result carries exactly one entry per canonical
	// section, in canonical order.
	KindSections KeyKind = iota

	// KindMaterials is an array of material line items. Default: empty array.
	KindMaterials

	// KindStringList is an array of strings. Default: empty array.
	KindStringList

	// KindMissingInfo is an array of follow-up question entries. Default:
	// empty array.
	KindMissingInfo

	// KindText is a string value. Default: empty string.
	KindText

	// KindNumber is a JSON number. Default: 0.
	KindNumber

	// KindFlag is a boolean. Default: false.
	KindFlag
)

// KeySpec binds one top-level key of the model's JSON reply to its expected
// kind. A missing or mistyped value is replaced by the kind's default rather
// than failing the whole reply.
type KeySpec struct {
	Name string
	Kind KeyKind
}

// TaskSpec is a fully assembled structured-output task: the instruction, the
// user content, and the output contract the reply is normalized against.
type TaskSpec struct {
	// Name labels the task in logs and metrics (e.g. "depot-notes").
	Name string

	// SystemPrompt is the complete task instruction, including the required
	// output shape.
	SystemPrompt string

	// UserContent is the transcript plus serialized task context.
	UserContent string

	// Temperature overrides the gateway default when non-zero.
	Temperature float64

	// Keys lists the top-level keys expected in the reply.
	Keys []KeySpec
}

// DepotSection is one interpreted note under a canonical section heading.
type DepotSection struct {
	// Section is the canonical section name.
	Section string `json:"section"`

	// PlainText is the terse engineer-facing note.
	PlainText string `json:"plainText"`

	// NaturalLanguage is the customer-facing phrasing of the same note.
	NaturalLanguage string `json:"naturalLanguage"`
}

// MissingInfo is a follow-up question the surveyor should still ask.
type MissingInfo struct {
	// Target names the section or checklist item the question relates to.
	Target string `json:"target"`

	// Question is the follow-up question text.
	Question string `json:"question"`
}

// Result is a normalized task reply. The typed fields are populated according
// to the task's [KeySpec] kinds; Fields holds every declared key after
// default-filling, so callers can decode task-specific shapes.
type Result struct {
	// Sections holds exactly one entry per canonical section, in canonical
	// order. Sections the model did not mention carry the placeholder note.
	Sections []DepotSection `json:"sections,omitempty"`

	// Materials lists material line items extracted from the transcript.
	Materials []schema.Material `json:"materials,omitempty"`

	// CheckedItems lists checklist item IDs the transcript covers.
	CheckedItems []string `json:"checkedItems,omitempty"`

	// MissingInfo lists follow-up questions for information still missing.
	MissingInfo []MissingInfo `json:"missingInfo,omitempty"`

	// CustomerSummary is a short customer-facing summary paragraph.
	CustomerSummary string `json:"customerSummary,omitempty"`

	// Fields maps every declared task key to its normalized JSON value.
	Fields map[string]json.RawMessage `json:"-"`
}

// Decode unmarshals the normalized key set into v. It is the escape hatch for
// tasks whose output shape has no dedicated [Result] field, such as
// requirements extraction.
func (r *Result) Decode(v any) error {
	buf, err := json.Marshal(r.Fields)
	if err != nil {
		return fmt.Errorf("gateway: encode normalized fields: %w", err)
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("gateway: decode normalized fields: %w", err)
	}
	return nil
}
