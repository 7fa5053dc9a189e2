// Package gateway turns free-form survey transcripts into structured depot
// notes by driving text-generation providers through strictly sequential
// fallback and normalizing their JSON replies against the canonical section
// taxonomy.
//
// The gateway guarantees the completeness invariant: every successful
// interpretation carries exactly one section entry per canonical section, in
// canonical order, with a placeholder note for sections the model did not
// mention. Providers are never raced in parallel — the first configured
// provider that yields a parseable JSON object wins, and only when every
// provider has failed does the gateway surface a single aggregate model
// error naming each failure.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/flueprint/flueprint/internal/apierr"
	"github.com/flueprint/flueprint/internal/observe"
	"github.com/flueprint/flueprint/internal/schema"
	"github.com/flueprint/flueprint/pkg/provider/llm"
	"github.com/flueprint/flueprint/pkg/store"
)

const (
	defaultTemperature  = 0.2
	defaultMaxTokens    = 4096
	defaultSnippetLimit = 6
)

// ProviderEntry pairs a configured [llm.Provider] with the name it is
// reported under in logs, metrics, and aggregate errors.
type ProviderEntry struct {
	Name     string
	Provider llm.Provider
}

// Option is a functional option for [New].
type Option func(*Gateway)

// WithTemperature sets the default sampling temperature for tasks that do not
// override it. Default: 0.2.
func WithTemperature(temp float64) Option {
	return func(g *Gateway) { g.temperature = temp }
}

// WithMaxTokens caps completion length per request. Default: 4096.
func WithMaxTokens(n int) Option {
	return func(g *Gateway) { g.maxTokens = n }
}

// WithReferenceStore enables reference-snippet enrichment of task
// instructions. Without it, tasks run on the transcript and schema alone.
func WithReferenceStore(refs store.ReferenceStore) Option {
	return func(g *Gateway) { g.refs = refs }
}

// WithSnippetLimit caps the number of reference snippets spliced into a task
// instruction. Default: 6.
func WithSnippetLimit(n int) Option {
	return func(g *Gateway) { g.snippetLimit = n }
}

// WithMetrics sets the metrics instance used for instrumentation. Default:
// [observe.DefaultMetrics].
func WithMetrics(m *observe.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// Gateway interprets transcripts through a prioritized provider chain. It is
// safe for concurrent use.
type Gateway struct {
	providers    []ProviderEntry
	schema       *schema.Store
	refs         store.ReferenceStore
	metrics      *observe.Metrics
	temperature  float64
	maxTokens    int
	snippetLimit int
}

// New returns a [Gateway] over the given provider chain. Providers are tried
// in slice order. At least one provider and a non-nil schema store are
// required.
func New(providers []ProviderEntry, schemaStore *schema.Store, opts ...Option) (*Gateway, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("gateway: at least one provider is required")
	}
	for i, p := range providers {
		if p.Name == "" || p.Provider == nil {
			return nil, fmt.Errorf("gateway: provider entry %d is incomplete", i)
		}
	}
	if schemaStore == nil {
		return nil, fmt.Errorf("gateway: schema store is required")
	}

	g := &Gateway{
		providers:    providers,
		schema:       schemaStore,
		temperature:  defaultTemperature,
		maxTokens:    defaultMaxTokens,
		snippetLimit: defaultSnippetLimit,
	}
	for _, o := range opts {
		o(g)
	}
	if g.metrics == nil {
		g.metrics = observe.DefaultMetrics()
	}
	return g, nil
}

// Generate runs task through the provider chain and normalizes the first
// parseable reply against the task's key specs.
//
// Providers are attempted strictly in order; a later provider is only
// consulted after the earlier one has definitively failed. An attempt fails
// on transport error, empty reply text, or a reply that does not parse as a
// bare JSON object. When every provider fails, Generate returns an aggregate
// [apierr.ModelError] naming each provider's failure. No partial result is
// ever returned.
func (g *Gateway) Generate(ctx context.Context, task TaskSpec) (*Result, error) {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "gateway.generate")
	defer span.End()

	obj, err := g.complete(ctx, task)
	if err != nil {
		return nil, err
	}

	res := g.normalize(ctx, task, obj)

	g.metrics.InterpretationDuration.Record(ctx, time.Since(start).Seconds())
	observe.Logger(ctx).Info("task complete",
		slog.String("task", task.Name),
		slog.Int("sections", len(res.Sections)),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

// complete walks the provider chain and returns the first reply that parses
// as a top-level JSON object.
func (g *Gateway) complete(ctx context.Context, task TaskSpec) (map[string]json.RawMessage, error) {
	req := llm.Request{
		SystemPrompt: task.SystemPrompt,
		UserContent:  task.UserContent,
		Temperature:  g.temperature,
		MaxTokens:    g.maxTokens,
	}
	if task.Temperature != 0 {
		req.Temperature = task.Temperature
	}

	var failures []string
	for _, entry := range g.providers {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("gateway: %s: %w", task.Name, err)
		}

		resp, err := entry.Provider.Complete(ctx, req)
		if err == nil && resp == nil {
			err = fmt.Errorf("provider returned no response")
		}
		if err == nil {
			var obj map[string]json.RawMessage
			obj, err = decodeObject(resp.Text)
			if err == nil {
				g.metrics.RecordProviderRequest(ctx, entry.Name, task.Name, "ok")
				return obj, nil
			}
		}

		g.metrics.RecordProviderRequest(ctx, entry.Name, task.Name, "error")
		g.metrics.RecordProviderError(ctx, entry.Name, task.Name)
		observe.Logger(ctx).Warn("provider attempt failed",
			slog.String("task", task.Name),
			slog.String("provider", entry.Name),
			slog.String("error", err.Error()),
		)
		failures = append(failures, fmt.Sprintf("%s: %v", entry.Name, err))
	}

	return nil, apierr.New(apierr.ModelError,
		"all providers failed for task %q: %s", task.Name, strings.Join(failures, "; "))
}

// decodeObject parses text as a bare top-level JSON object. Replies wrapped
// in markdown fences or prose are rejected; there is no fuzzy repair.
func decodeObject(text string) (map[string]json.RawMessage, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("empty reply text")
	}
	if !strings.HasPrefix(trimmed, "{") {
		return nil, fmt.Errorf("reply is not a JSON object")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, fmt.Errorf("parse reply: %w", err)
	}
	return obj, nil
}
