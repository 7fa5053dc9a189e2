package gateway_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/flueprint/flueprint/internal/apierr"
	"github.com/flueprint/flueprint/internal/gateway"
	"github.com/flueprint/flueprint/internal/schema"
	"github.com/flueprint/flueprint/pkg/provider/llm"
	llmmock "github.com/flueprint/flueprint/pkg/provider/llm/mock"
	"github.com/flueprint/flueprint/pkg/store"
	storemock "github.com/flueprint/flueprint/pkg/store/mock"
)

// twoSectionReply mentions two of the fourteen canonical sections, using
// non-canonical headings the resolver must map.
const twoSectionReply = `{
  "sections": [
    {"section": "boiler", "plainText": "Fit 30kW combi on kitchen wall", "naturalLanguage": "We will fit a 30kW combi boiler on your kitchen wall."},
    {"section": "gas supply", "plainText": "Upgrade run to 22mm", "naturalLanguage": "The gas pipe will be upgraded to a larger size."}
  ],
  "materials": [
    {"category": "Boiler", "item": "30kW combi", "qty": 1, "notes": ""}
  ],
  "checkedItems": ["magnetic-filter", "not-a-real-item"],
  "missingInfo": [
    {"target": "Water supply", "question": "What is the standing mains pressure?"}
  ],
  "customerSummary": "A new combi boiler will be installed in the kitchen."
}`

func newGateway(t *testing.T, providers []gateway.ProviderEntry, opts ...gateway.Option) *gateway.Gateway {
	t.Helper()
	g, err := gateway.New(providers, schema.Default(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func single(p llm.Provider) []gateway.ProviderEntry {
	return []gateway.ProviderEntry{{Name: "primary", Provider: p}}
}

func TestInterpret_BackfillsAllSections(t *testing.T) {
	p := &llmmock.Provider{Response: &llm.Response{Text: twoSectionReply}}
	g := newGateway(t, single(p))

	res, err := g.Interpret(context.Background(), gateway.InterpretRequest{
		Transcript: "thirty kilowatt combi on the kitchen wall, gas run needs twenty-two mil",
	})
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	sections := schema.Default().Sections()
	if len(res.Sections) != len(sections) {
		t.Fatalf("section count = %d, want %d", len(res.Sections), len(sections))
	}

	placeholders := 0
	for i, sec := range res.Sections {
		if sec.Section != sections[i].Name {
			t.Errorf("section[%d] = %q, want %q (canonical order)", i, sec.Section, sections[i].Name)
		}
		if sec.PlainText == gateway.PlaceholderNote {
			placeholders++
		}
	}
	if placeholders != len(sections)-2 {
		t.Errorf("placeholder count = %d, want %d", placeholders, len(sections)-2)
	}

	// Non-canonical headings must have been resolved, not dropped.
	for _, sec := range res.Sections {
		if sec.Section == "Boiler" && sec.PlainText != "Fit 30kW combi on kitchen wall" {
			t.Errorf("Boiler note = %q, resolver lost the model's entry", sec.PlainText)
		}
	}
}

func TestInterpret_EmptyTranscript(t *testing.T) {
	p := &llmmock.Provider{Response: &llm.Response{Text: twoSectionReply}}
	g := newGateway(t, single(p))

	_, err := g.Interpret(context.Background(), gateway.InterpretRequest{Transcript: "   "})
	if err == nil {
		t.Fatal("expected error for empty transcript")
	}
	if kind := apierr.KindOf(err); kind != apierr.BadRequest {
		t.Errorf("error kind = %q, want %q", kind, apierr.BadRequest)
	}
	if p.CallCount() != 0 {
		t.Errorf("provider called %d times for an invalid request", p.CallCount())
	}
}

func TestInterpret_FiltersUnknownChecklistItems(t *testing.T) {
	p := &llmmock.Provider{Response: &llm.Response{Text: twoSectionReply}}
	g := newGateway(t, single(p))

	res, err := g.Interpret(context.Background(), gateway.InterpretRequest{Transcript: "survey notes"})
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if len(res.CheckedItems) != 1 || res.CheckedItems[0] != "magnetic-filter" {
		t.Errorf("CheckedItems = %v, want only magnetic-filter", res.CheckedItems)
	}
}

func TestInterpret_MergesDuplicateSections(t *testing.T) {
	reply := `{
	  "sections": [
	    {"section": "Boiler", "plainText": "30kW output", "naturalLanguage": "A 30kW boiler."},
	    {"section": "boilers", "plainText": "Sited on kitchen wall", "naturalLanguage": "Fitted in the kitchen."}
	  ]
	}`
	p := &llmmock.Provider{Response: &llm.Response{Text: reply}}
	g := newGateway(t, single(p))

	res, err := g.Interpret(context.Background(), gateway.InterpretRequest{Transcript: "boiler details"})
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	for _, sec := range res.Sections {
		if sec.Section == "Boiler" {
			if sec.PlainText != "30kW output\nSited on kitchen wall" {
				t.Errorf("merged note = %q, want both entries joined", sec.PlainText)
			}
			return
		}
	}
	t.Fatal("Boiler section missing from result")
}

func TestInterpret_DropsUnresolvableSections(t *testing.T) {
	reply := `{
	  "sections": [
	    {"section": "Swimming pool", "plainText": "heated pool", "naturalLanguage": "pool"}
	  ]
	}`
	p := &llmmock.Provider{Response: &llm.Response{Text: reply}}
	g := newGateway(t, single(p))

	res, err := g.Interpret(context.Background(), gateway.InterpretRequest{Transcript: "notes"})
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	for _, sec := range res.Sections {
		if sec.PlainText == "heated pool" {
			t.Fatalf("unresolvable entry survived under %q", sec.Section)
		}
		if sec.PlainText != gateway.PlaceholderNote {
			t.Errorf("section %q = %q, want placeholder", sec.Section, sec.PlainText)
		}
	}
}

func TestGenerate_DefaultsMissingKeys(t *testing.T) {
	p := &llmmock.Provider{Response: &llm.Response{Text: `{"sections": []}`}}
	g := newGateway(t, single(p))

	res, err := g.Interpret(context.Background(), gateway.InterpretRequest{Transcript: "notes"})
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if len(res.Materials) != 0 {
		t.Errorf("Materials = %v, want empty", res.Materials)
	}
	if len(res.CheckedItems) != 0 {
		t.Errorf("CheckedItems = %v, want empty", res.CheckedItems)
	}
	if len(res.MissingInfo) != 0 {
		t.Errorf("MissingInfo = %v, want empty", res.MissingInfo)
	}
	if res.CustomerSummary != "" {
		t.Errorf("CustomerSummary = %q, want empty", res.CustomerSummary)
	}
	if len(res.Sections) != len(schema.Default().Sections()) {
		t.Errorf("section count = %d, want full canonical set", len(res.Sections))
	}
}

func TestGenerate_FallsBackToSecondProvider(t *testing.T) {
	primary := &llmmock.Provider{Err: errors.New("rate limited")}
	secondary := &llmmock.Provider{Response: &llm.Response{Text: twoSectionReply}}
	g := newGateway(t, []gateway.ProviderEntry{
		{Name: "primary", Provider: primary},
		{Name: "secondary", Provider: secondary},
	})

	res, err := g.Interpret(context.Background(), gateway.InterpretRequest{Transcript: "notes"})
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if res == nil {
		t.Fatal("nil result from fallback")
	}
	if primary.CallCount() != 1 {
		t.Errorf("primary called %d times, want 1", primary.CallCount())
	}
	if secondary.CallCount() != 1 {
		t.Errorf("secondary called %d times, want 1", secondary.CallCount())
	}

	// Both providers must receive the identical task.
	if primary.Calls[0].Req.SystemPrompt != secondary.Calls[0].Req.SystemPrompt {
		t.Error("fallback attempt carried a different system prompt")
	}
	if primary.Calls[0].Req.UserContent != secondary.Calls[0].Req.UserContent {
		t.Error("fallback attempt carried different user content")
	}
}

func TestGenerate_UnparseableReplyTriggersFallback(t *testing.T) {
	fenced := "```json\n{\"sections\": []}\n```"
	primary := &llmmock.Provider{Response: &llm.Response{Text: fenced}}
	secondary := &llmmock.Provider{Response: &llm.Response{Text: `{"sections": []}`}}
	g := newGateway(t, []gateway.ProviderEntry{
		{Name: "primary", Provider: primary},
		{Name: "secondary", Provider: secondary},
	})

	_, err := g.Interpret(context.Background(), gateway.InterpretRequest{Transcript: "notes"})
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if secondary.CallCount() != 1 {
		t.Errorf("secondary called %d times, want 1 (fenced reply must not parse)", secondary.CallCount())
	}
}

func TestGenerate_AggregateErrorNamesEveryProvider(t *testing.T) {
	primary := &llmmock.Provider{Err: errors.New("rate limited")}
	secondary := &llmmock.Provider{Err: errors.New("connection refused")}
	g := newGateway(t, []gateway.ProviderEntry{
		{Name: "openai", Provider: primary},
		{Name: "anthropic", Provider: secondary},
	})

	_, err := g.Interpret(context.Background(), gateway.InterpretRequest{Transcript: "notes"})
	if err == nil {
		t.Fatal("expected aggregate error when every provider fails")
	}
	if kind := apierr.KindOf(err); kind != apierr.ModelError {
		t.Errorf("error kind = %q, want %q", kind, apierr.ModelError)
	}
	msg := err.Error()
	for _, want := range []string{"openai", "rate limited", "anthropic", "connection refused"} {
		if !strings.Contains(msg, want) {
			t.Errorf("aggregate error %q missing %q", msg, want)
		}
	}
}

func TestInterpret_SplicesReferenceSnippets(t *testing.T) {
	refs := &storemock.ReferenceStore{}
	seedSnippet(t, refs, "mx-180", "Mixergy MX-180 spec sheet", "180L smart cylinder, 22mm primaries.")

	p := &llmmock.Provider{Response: &llm.Response{Text: twoSectionReply}}
	g := newGateway(t, single(p), gateway.WithReferenceStore(refs))

	_, err := g.Interpret(context.Background(), gateway.InterpretRequest{
		Transcript:   "customer asked about the mixergy cylinder",
		SectionHints: map[string]string{"Cylinders": "customer wants a smart cylinder"},
	})
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	prompt := p.Calls[0].Req.SystemPrompt
	if !strings.Contains(prompt, "Mixergy MX-180 spec sheet") {
		t.Error("system prompt missing reference snippet")
	}
	if !strings.Contains(prompt, "customer wants a smart cylinder") {
		t.Error("system prompt missing section hint")
	}
}

func TestInterpret_ReferenceStoreFailureIsNonFatal(t *testing.T) {
	refs := &storemock.ReferenceStore{RecentErr: errors.New("connection reset")}
	p := &llmmock.Provider{Response: &llm.Response{Text: twoSectionReply}}
	g := newGateway(t, single(p), gateway.WithReferenceStore(refs))

	if _, err := g.Interpret(context.Background(), gateway.InterpretRequest{Transcript: "notes"}); err != nil {
		t.Fatalf("Interpret failed on reference store outage: %v", err)
	}
}

func TestExtractRequirements_DecodesRecord(t *testing.T) {
	reply := `{
	  "occupants": 5,
	  "bathrooms": 2,
	  "bedrooms": 4,
	  "mainsPressureBar": 2.5,
	  "mainsFlowLpm": 18,
	  "currentSystem": "regular",
	  "openVented": true,
	  "spaceConstrained": false,
	  "smartControls": true,
	  "renewables": "not a bool",
	  "lowBudget": false,
	  "preferredArchetype": "system-mixergy"
	}`
	p := &llmmock.Provider{Response: &llm.Response{Text: reply}}
	g := newGateway(t, single(p))

	res, err := g.ExtractRequirements(context.Background(), "five of us, two bathrooms, open vented system in the loft")
	if err != nil {
		t.Fatalf("ExtractRequirements: %v", err)
	}

	var rec struct {
		Occupants          int     `json:"occupants"`
		Bathrooms          int     `json:"bathrooms"`
		MainsPressureBar   float64 `json:"mainsPressureBar"`
		CurrentSystem      string  `json:"currentSystem"`
		OpenVented         bool    `json:"openVented"`
		Renewables         bool    `json:"renewables"`
		PreferredArchetype string  `json:"preferredArchetype"`
	}
	if err := res.Decode(&rec); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if rec.Occupants != 5 || rec.Bathrooms != 2 {
		t.Errorf("counts = %d/%d, want 5/2", rec.Occupants, rec.Bathrooms)
	}
	if rec.MainsPressureBar != 2.5 {
		t.Errorf("mainsPressureBar = %v, want 2.5", rec.MainsPressureBar)
	}
	if !rec.OpenVented {
		t.Error("openVented = false, want true")
	}
	// Mistyped flag falls back to the kind default.
	if rec.Renewables {
		t.Error("renewables = true, want default false for mistyped value")
	}
	if rec.PreferredArchetype != "system-mixergy" {
		t.Errorf("preferredArchetype = %q", rec.PreferredArchetype)
	}
}

// seedSnippet stores a snippet in the mock reference store.
func seedSnippet(t *testing.T, refs *storemock.ReferenceStore, id, title, content string) {
	t.Helper()
	err := refs.Add(context.Background(), store.Snippet{ID: id, Title: title, Content: content}, nil)
	if err != nil {
		t.Fatalf("Add snippet: %v", err)
	}
}
