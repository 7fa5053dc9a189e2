package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/flueprint/flueprint/internal/observe"
	"github.com/flueprint/flueprint/internal/schema"
)

// PlaceholderNote fills canonical sections the model left unmentioned. The
// depot UI renders every section heading, so the placeholder keeps empty
// sections visibly empty instead of silently absent.
const PlaceholderNote = "No additional notes recorded."

// normalize applies per-key default-filling and section resolution to a
// parsed reply object. It never fails: a missing or mistyped value falls back
// to the key kind's default, and unresolvable section entries are dropped
// with a log line.
func (g *Gateway) normalize(ctx context.Context, task TaskSpec, obj map[string]json.RawMessage) *Result {
	res := &Result{Fields: make(map[string]json.RawMessage, len(task.Keys))}
	log := observe.Logger(ctx)

	for _, key := range task.Keys {
		raw := obj[key.Name]

		switch key.Kind {
		case KindSections:
			res.Sections = g.normalizeSections(ctx, task, key.Name, raw)
			res.Fields[key.Name] = mustMarshal(res.Sections)

		case KindMaterials:
			var materials []schema.Material
			if err := decodeKey(raw, &materials); err != nil {
				logMistyped(log, task, key.Name, err)
				materials = []schema.Material{}
			}
			res.Materials = materials
			res.Fields[key.Name] = mustMarshal(materials)

		case KindStringList:
			var items []string
			if err := decodeKey(raw, &items); err != nil {
				logMistyped(log, task, key.Name, err)
				items = []string{}
			}
			if key.Name == "checkedItems" {
				items = g.filterChecklistIDs(ctx, task, items)
				res.CheckedItems = items
			}
			res.Fields[key.Name] = mustMarshal(items)

		case KindMissingInfo:
			var missing []MissingInfo
			if err := decodeKey(raw, &missing); err != nil {
				logMistyped(log, task, key.Name, err)
				missing = []MissingInfo{}
			}
			res.MissingInfo = missing
			res.Fields[key.Name] = mustMarshal(missing)

		case KindText:
			var text string
			if err := decodeKey(raw, &text); err != nil {
				logMistyped(log, task, key.Name, err)
				text = ""
			}
			if key.Name == "customerSummary" {
				res.CustomerSummary = text
			}
			res.Fields[key.Name] = mustMarshal(text)

		case KindNumber:
			var n float64
			if err := decodeKey(raw, &n); err != nil {
				logMistyped(log, task, key.Name, err)
				n = 0
			}
			res.Fields[key.Name] = mustMarshal(n)

		case KindFlag:
			var b bool
			if err := decodeKey(raw, &b); err != nil {
				logMistyped(log, task, key.Name, err)
				b = false
			}
			res.Fields[key.Name] = mustMarshal(b)
		}
	}

	return res
}

// normalizeSections resolves entries against the canonical taxonomy, merges
// duplicates, and backfills absent sections so the result carries exactly one
// entry per canonical section in canonical order.
func (g *Gateway) normalizeSections(ctx context.Context, task TaskSpec, keyName string, raw json.RawMessage) []DepotSection {
	log := observe.Logger(ctx)

	var entries []json.RawMessage
	if err := decodeKey(raw, &entries); err != nil {
		logMistyped(log, task, keyName, err)
		entries = nil
	}

	lookup := g.schema.Lookup()
	byCanonical := make(map[string]*DepotSection, len(entries))
	var dropped int64

	for _, entry := range entries {
		var sec DepotSection
		if err := json.Unmarshal(entry, &sec); err != nil {
			dropped++
			log.Debug("section entry unparseable",
				slog.String("task", task.Name),
				slog.String("error", err.Error()),
			)
			continue
		}

		canonical, ok := lookup.Resolve(sec.Section)
		if !ok {
			dropped++
			log.Warn("section heading unresolvable",
				slog.String("task", task.Name),
				slog.String("heading", sec.Section),
			)
			continue
		}

		// Duplicate headings resolving to the same canonical section are
		// merged so no surveyor note is lost.
		if prev, exists := byCanonical[canonical]; exists {
			prev.PlainText = joinNotes(prev.PlainText, sec.PlainText)
			prev.NaturalLanguage = joinNotes(prev.NaturalLanguage, sec.NaturalLanguage)
			continue
		}
		sec.Section = canonical
		byCanonical[canonical] = &sec
	}

	if dropped > 0 {
		g.metrics.SectionsDropped.Add(ctx, dropped)
	}

	var backfilled int64
	out := make([]DepotSection, 0, len(g.schema.Sections()))
	for _, cs := range g.schema.Sections() {
		if sec, ok := byCanonical[cs.Name]; ok {
			out = append(out, *sec)
			continue
		}
		backfilled++
		out = append(out, DepotSection{
			Section:         cs.Name,
			PlainText:       PlaceholderNote,
			NaturalLanguage: PlaceholderNote,
		})
	}
	if backfilled > 0 {
		g.metrics.SectionsBackfilled.Add(ctx, backfilled)
	}

	return out
}

// filterChecklistIDs drops IDs that are not in the checklist catalog.
func (g *Gateway) filterChecklistIDs(ctx context.Context, task TaskSpec, ids []string) []string {
	out := ids[:0]
	for _, id := range ids {
		if _, ok := g.schema.Item(id); !ok {
			observe.Logger(ctx).Debug("unknown checklist item dropped",
				slog.String("task", task.Name),
				slog.String("id", id),
			)
			continue
		}
		out = append(out, id)
	}
	return out
}

// decodeKey unmarshals raw into v. A nil raw value reports an error so the
// caller applies the kind default.
func decodeKey(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errMissingKey
	}
	return json.Unmarshal(raw, v)
}

// errMissingKey marks a key absent from the reply object.
var errMissingKey = jsonError("key missing from reply")

type jsonError string

func (e jsonError) Error() string { return string(e) }

func logMistyped(log *slog.Logger, task TaskSpec, key string, err error) {
	log.Debug("reply key defaulted",
		slog.String("task", task.Name),
		slog.String("key", key),
		slog.String("reason", err.Error()),
	)
}

// mustMarshal encodes v, which is always a marshalable in-memory value.
func mustMarshal(v any) json.RawMessage {
	buf, err := json.Marshal(v)
	if err != nil {
		panic("gateway: marshal normalized value: " + err.Error())
	}
	return buf
}

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}
