package gateway

import (
	"fmt"
	"slices"
	"strings"

	"github.com/flueprint/flueprint/internal/schema"
	"github.com/flueprint/flueprint/pkg/store"
)

// depotNotesSystemTemplate is the base instruction for the depot-notes task.
// The canonical section catalog and the checklist catalog are spliced in at
// call time; optional context blocks are appended after.
const depotNotesSystemTemplate = `You are a heating survey interpreter for a boiler installation depot.

Your task: turn the surveyor's spoken transcript into structured depot notes.

Rules:
- Organise every observation under exactly one of the canonical sections listed below. Use the canonical section names verbatim.
- Write plainText as a terse note for the installing engineer and naturalLanguage as a customer-friendly phrasing of the same fact.
- Only record what the transcript supports. Never invent measurements, model numbers, or site conditions.
- List materials only when the transcript names or clearly implies them.
- checkedItems must contain only IDs from the checklist catalog below.
- For information an installer would need but the transcript does not cover, add a missingInfo entry with a concrete follow-up question.

Canonical sections:
%s

Checklist catalog (id: label):
%s

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "sections": [
    {"section": "<canonical section name>", "plainText": "<engineer note>", "naturalLanguage": "<customer note>"}
  ],
  "materials": [
    {"category": "<category>", "item": "<item>", "qty": <count>, "notes": "<notes or empty>"}
  ],
  "checkedItems": ["<checklist item id>"],
  "missingInfo": [
    {"target": "<section or item>", "question": "<follow-up question>"}
  ],
  "customerSummary": "<two or three sentences for the customer>"
}`

// requirementsSystemPrompt instructs the model to extract the household
// requirements record consumed by the recommendation engine.
const requirementsSystemPrompt = `You are a heating survey analyst.

Your task: extract the household's hot-water and heating requirements from the surveyor's transcript.

Rules:
- Report only figures the transcript states or clearly implies. Use 0 for unknown counts and measurements.
- currentSystem is one of: "combi", "system", "regular", "back-boiler", "electric", or "" when the transcript does not say.
- preferredArchetype is a system archetype the surveyor explicitly recommends (e.g. "combi", "system-unvented", "system-mixergy", "ashp-cylinder"), or "" when none is stated.
- Flags are true only when the transcript supports them.

Respond with ONLY a JSON object in this exact format (no markdown, no prose):
{
  "occupants": <count>,
  "bathrooms": <count>,
  "bedrooms": <count>,
  "mainsPressureBar": <bar>,
  "mainsFlowLpm": <litres per minute>,
  "currentSystem": "<system type>",
  "openVented": <bool>,
  "spaceConstrained": <bool>,
  "smartControls": <bool>,
  "renewables": <bool>,
  "lowBudget": <bool>,
  "preferredArchetype": "<archetype or empty>"
}`

// depotNotesKeys is the output contract of the depot-notes task.
var depotNotesKeys = []KeySpec{
	{Name: "sections", Kind: KindSections},
	{Name: "materials", Kind: KindMaterials},
	{Name: "checkedItems", Kind: KindStringList},
	{Name: "missingInfo", Kind: KindMissingInfo},
	{Name: "customerSummary", Kind: KindText},
}

// requirementsKeys is the output contract of the requirements-extraction task.
var requirementsKeys = []KeySpec{
	{Name: "occupants", Kind: KindNumber},
	{Name: "bathrooms", Kind: KindNumber},
	{Name: "bedrooms", Kind: KindNumber},
	{Name: "mainsPressureBar", Kind: KindNumber},
	{Name: "mainsFlowLpm", Kind: KindNumber},
	{Name: "currentSystem", Kind: KindText},
	{Name: "openVented", Kind: KindFlag},
	{Name: "spaceConstrained", Kind: KindFlag},
	{Name: "smartControls", Kind: KindFlag},
	{Name: "renewables", Kind: KindFlag},
	{Name: "lowBudget", Kind: KindFlag},
	{Name: "preferredArchetype", Kind: KindText},
}

// buildDepotNotesTask assembles the depot-notes [TaskSpec] from the schema,
// the request context, and any fetched reference snippets.
func buildDepotNotesTask(schemaStore *schema.Store, req InterpretRequest, snippets []store.Snippet) TaskSpec {
	var b strings.Builder
	fmt.Fprintf(&b, depotNotesSystemTemplate,
		formatSections(schemaStore.Sections()),
		formatChecklist(schemaStore.Checklist()),
	)

	if len(req.AlreadyCaptured) > 0 {
		b.WriteString("\n\nSections already captured in this session (do not repeat facts already recorded there):\n")
		for _, sec := range req.AlreadyCaptured {
			fmt.Fprintf(&b, "- %s: %s\n", sec.Section, sec.PlainText)
		}
	}

	if len(req.CheckedItems) > 0 {
		b.WriteString("\nChecklist items already ticked (do not repeat them in checkedItems):\n")
		for _, id := range req.CheckedItems {
			fmt.Fprintf(&b, "- %s\n", id)
		}
	}

	if len(req.SectionHints) > 0 {
		b.WriteString("\nSection hints from the surveyor:\n")
		for _, section := range sortedKeys(req.SectionHints) {
			fmt.Fprintf(&b, "- %s: %s\n", section, req.SectionHints[section])
		}
	}

	if len(snippets) > 0 {
		b.WriteString("\nReference material (newest first):\n")
		for _, sn := range snippets {
			fmt.Fprintf(&b, "- %s: %s\n", sn.Title, sn.Content)
		}
	}

	if req.CustomInstructions != "" {
		b.WriteString("\nAdditional instructions:\n")
		b.WriteString(req.CustomInstructions)
		b.WriteString("\n")
	}

	return TaskSpec{
		Name:         "depot-notes",
		SystemPrompt: b.String(),
		UserContent:  req.Transcript,
		Keys:         depotNotesKeys,
	}
}

func formatSections(sections []schema.CanonicalSection) string {
	var b strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&b, "- %s: %s\n", s.Name, s.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatChecklist(items []schema.ChecklistItem) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "- %s: %s\n", it.ID, it.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}

// sortedKeys returns map keys in lexical order so task instructions are
// reproducible across runs.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
