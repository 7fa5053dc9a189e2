package gateway

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/flueprint/flueprint/internal/apierr"
	"github.com/flueprint/flueprint/internal/observe"
	"github.com/flueprint/flueprint/pkg/store"
)

// InterpretRequest carries one round of transcription plus the session
// context the task instruction is assembled from.
type InterpretRequest struct {
	// Transcript is the surveyor's spoken input. Required.
	Transcript string

	// AlreadyCaptured lists section notes recorded earlier in the session so
	// the model avoids repeating them.
	AlreadyCaptured []DepotSection

	// CheckedItems lists checklist item IDs already ticked by the operator,
	// so the model does not report them again.
	CheckedItems []string

	// SectionHints maps canonical section names to surveyor guidance for
	// that section.
	SectionHints map[string]string

	// CustomInstructions is free-form depot guidance appended to the task
	// instruction.
	CustomInstructions string
}

// Interpret runs the depot-notes task over the transcript and returns the
// normalized result. The transcript must be non-empty; an empty transcript is
// an [apierr.BadRequest].
//
// When a reference store is configured, snippets matching the section hints
// are fetched concurrently and spliced into the task instruction. Reference
// lookup is best-effort: a failing store degrades to an unenriched
// instruction rather than failing the interpretation.
func (g *Gateway) Interpret(ctx context.Context, req InterpretRequest) (*Result, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, apierr.New(apierr.BadRequest, "transcript must not be empty")
	}

	snippets := g.fetchReferences(ctx, req)
	task := buildDepotNotesTask(g.schema, req, snippets)
	return g.Generate(ctx, task)
}

// ExtractRequirements runs the requirements-extraction task over the
// transcript. The result's normalized key set decodes into the recommendation
// engine's requirements record via [Result.Decode].
func (g *Gateway) ExtractRequirements(ctx context.Context, transcript string) (*Result, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, apierr.New(apierr.BadRequest, "transcript must not be empty")
	}

	return g.Generate(ctx, TaskSpec{
		Name:         "requirements",
		SystemPrompt: requirementsSystemPrompt,
		UserContent:  transcript,
		Temperature:  0.1,
		Keys:         requirementsKeys,
	})
}

// fetchReferences concurrently queries the reference store, one query per
// section hint plus a recency query, and merges the results newest-source
// first without duplicates. Only the reference fetch is concurrent; provider
// fallback in [Gateway.Generate] stays strictly sequential.
func (g *Gateway) fetchReferences(ctx context.Context, req InterpretRequest) []store.Snippet {
	if g.refs == nil || g.snippetLimit <= 0 {
		return nil
	}

	queries := make([]string, 0, len(req.SectionHints)+1)
	for _, section := range sortedKeys(req.SectionHints) {
		queries = append(queries, section)
	}
	queries = append(queries, "") // newest snippets regardless of topic

	// Each goroutine writes its own slot, so no further synchronisation is
	// needed beyond eg.Wait.
	results := make([][]store.Snippet, len(queries))

	eg, egCtx := errgroup.WithContext(ctx)
	for i, q := range queries {
		eg.Go(func() error {
			snippets, err := g.refs.Recent(egCtx, q, g.snippetLimit)
			if err != nil {
				// Best effort: enrichment failure must not fail the task.
				observe.Logger(ctx).Warn("reference lookup failed",
					slog.String("query", q),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = snippets
			return nil
		})
	}
	_ = eg.Wait()

	seen := make(map[string]struct{})
	var merged []store.Snippet
	for _, batch := range results {
		for _, sn := range batch {
			if _, dup := seen[sn.ID]; dup {
				continue
			}
			seen[sn.ID] = struct{}{}
			merged = append(merged, sn)
			if len(merged) == g.snippetLimit {
				return merged
			}
		}
	}
	return merged
}
