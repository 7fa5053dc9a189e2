package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flueprint/flueprint/pkg/provider/llm"
)

// ProviderConfig tunes a wrapped provider's retry and breaker behaviour.
type ProviderConfig struct {
	// Name labels the provider in logs and breaker messages.
	Name string

	// MaxAttempts is the number of tries per Complete call, including the
	// first. Default: 2.
	MaxAttempts int

	// InitialBackoff is the pause before the second attempt; it doubles per
	// retry up to MaxBackoff. Default: 500ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the backoff growth. Default: 5s.
	MaxBackoff time.Duration

	// Breaker tunes the circuit breaker guarding the backend.
	Breaker BreakerConfig
}

func (c ProviderConfig) withDefaults() ProviderConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 2
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	if c.Breaker.Name == "" {
		c.Breaker.Name = c.Name
	}
	return c
}

// Provider decorates an [llm.Provider] with retry, exponential backoff, and
// a circuit breaker. It implements [llm.Provider] and slots directly into a
// gateway provider chain.
type Provider struct {
	inner   llm.Provider
	cfg     ProviderConfig
	breaker *CircuitBreaker
}

// WrapProvider wraps inner with the given resilience configuration.
func WrapProvider(inner llm.Provider, cfg ProviderConfig) *Provider {
	cfg = cfg.withDefaults()
	return &Provider{
		inner:   inner,
		cfg:     cfg,
		breaker: NewCircuitBreaker(cfg.Breaker),
	}
}

// Breaker exposes the underlying breaker for health reporting.
func (p *Provider) Breaker() *CircuitBreaker { return p.breaker }

// Complete forwards to the wrapped provider, retrying transient failures
// with exponential backoff. Every attempt passes through the circuit
// breaker, so an open breaker fails fast without touching the backend.
// Context cancellation stops the retry loop immediately.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	backoff := p.cfg.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("resilience: %s: %w", p.cfg.Name, ctx.Err())
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, p.cfg.MaxBackoff)
		}

		var resp *llm.Response
		err := p.breaker.Execute(func() error {
			var callErr error
			resp, callErr = p.inner.Complete(ctx, req)
			return callErr
		})
		if err == nil {
			return resp, nil
		}
		lastErr = err

		// An open breaker will not recover within this call's retry budget.
		if errors.Is(err, ErrCircuitOpen) || ctx.Err() != nil {
			break
		}

		slog.Debug("provider attempt failed",
			slog.String("provider", p.cfg.Name),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}

	return nil, fmt.Errorf("resilience: %s: %w", p.cfg.Name, lastErr)
}
