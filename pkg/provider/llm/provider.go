// Package llm defines the Provider interface for text-generation backends.
//
// A provider wraps a remote or local model API (e.g., OpenAI GPT-4o, Anthropic
// Claude, or a local Ollama instance) and exposes a uniform interface for the
// flueprint gateway to request a single structured completion without coupling
// to any specific SDK.
//
// The gateway drives providers strictly one request at a time: it sends a
// system instruction plus user content and expects the full text of the reply.
// Streaming and tool calling are deliberately absent from this interface —
// flueprint's structured-output pipeline consumes complete JSON payloads only.
//
// Implementors must be safe for concurrent use.
package llm

import "context"

// Usage holds token accounting information returned by the backend.
// All counts are in the model's native token unit and may differ between
// providers for the same textual content.
type Usage struct {
	// PromptTokens is the number of tokens consumed by the system instruction
	// and user content.
	PromptTokens int

	// CompletionTokens is the number of tokens generated in the response.
	CompletionTokens int

	// TotalTokens is PromptTokens + CompletionTokens. Some providers return it
	// directly rather than computing it from the parts.
	TotalTokens int
}

// Request carries everything the model needs to produce a structured reply.
// Callers should treat a zero-value request as invalid; at minimum UserContent
// must be non-empty.
type Request struct {
	// SystemPrompt is the task instruction injected before the user content.
	// For flueprint tasks it carries the canonical section taxonomy, the
	// checklist catalog, and the required output shape.
	SystemPrompt string

	// UserContent is the survey transcript plus any serialized task context.
	UserContent string

	// Temperature controls output randomness in the range [0.0, 2.0]. The
	// gateway uses low values (0.1–0.3) since the output must be machine
	// parseable. A value of 0.0 requests the provider default.
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int
}

// Response is the full, non-streamed reply from the model.
type Response struct {
	// Text is the complete text of the model's reply. The gateway expects this
	// to be a serialized JSON object with no surrounding markup.
	Text string

	// Usage contains token accounting for this request/response pair.
	Usage Usage
}

// Provider is the abstraction over any text-generation backend.
//
// Implementations must be safe for concurrent use from multiple goroutines
// and must propagate context cancellation promptly.
type Provider interface {
	// Complete sends req to the model and waits for the full response.
	//
	// An error return means the attempt is unusable: transport failure,
	// unparseable provider envelope, or an empty choice set. The gateway
	// treats any such error as grounds to fall through to the next
	// configured provider.
	Complete(ctx context.Context, req Request) (*Response, error)
}
