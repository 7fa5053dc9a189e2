// Package mock provides a test double for the llm.Provider interface.
//
// Use Provider in unit tests to verify the requests the gateway sends and to
// feed controlled responses without a live backend. All fields are safe to set
// before calling any method; mutating them during a concurrent call is the
// caller's responsibility.
//
// Example:
//
//	p := &mock.Provider{
//	    Response: &llm.Response{Text: `{"sections": []}`},
//	}
//	resp, err := p.Complete(ctx, req)
package mock

import (
	"context"
	"sync"

	"github.com/flueprint/flueprint/pkg/provider/llm"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is the Request passed to Complete.
	Req llm.Request
}

// Provider is a mock implementation of llm.Provider.
// Zero values for response fields cause Complete to return nil, nil.
// Set Err to inject an error, or Responses to script a sequence of replies.
type Provider struct {
	mu sync.Mutex

	// Response is returned by every Complete call when Responses is empty.
	Response *llm.Response

	// Responses, when non-empty, is consumed one entry per Complete call.
	// After the last entry, subsequent calls fall back to Response.
	Responses []*llm.Response

	// Err, if non-nil, is returned as the error from Complete.
	Err error

	// Calls records every invocation of Complete in order.
	Calls []CompleteCall

	consumed int
}

// Complete records the call and returns the next scripted response.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, CompleteCall{Ctx: ctx, Req: req})
	if p.Err != nil {
		return nil, p.Err
	}
	if p.consumed < len(p.Responses) {
		resp := p.Responses[p.consumed]
		p.consumed++
		return resp, nil
	}
	return p.Response, nil
}

// CallCount returns the number of Complete invocations so far. Thread-safe.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}

// Reset clears all recorded calls and scripted-response progress. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = nil
	p.consumed = 0
}

// Ensure Provider implements llm.Provider at compile time.
var _ llm.Provider = (*Provider)(nil)
