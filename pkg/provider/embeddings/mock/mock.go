// Package mock provides a test double for the embeddings.Provider interface.
//
// The mock generates deterministic pseudo-embeddings from the input text so
// tests can exercise similarity-ranking code paths without a live backend.
package mock

import (
	"context"
	"sync"

	"github.com/flueprint/flueprint/pkg/provider/embeddings"
)

// Provider is a mock implementation of embeddings.Provider.
type Provider struct {
	mu sync.Mutex

	// Dims is the reported vector dimensionality. Defaults to 8 when zero.
	Dims int

	// Err, if non-nil, is returned from Embed and EmbedBatch.
	Err error

	// EmbedCalls records every text passed to Embed or EmbedBatch, in order.
	EmbedCalls []string
}

// Ensure Provider implements embeddings.Provider at compile time.
var _ embeddings.Provider = (*Provider)(nil)

// Embed returns a deterministic vector derived from the bytes of text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	p.EmbedCalls = append(p.EmbedCalls, text)
	err := p.Err
	dims := p.dims()
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return vectorFor(text, dims), nil
}

// EmbedBatch returns deterministic vectors for each input text.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	p.mu.Lock()
	p.EmbedCalls = append(p.EmbedCalls, texts...)
	err := p.Err
	dims := p.dims()
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vectorFor(t, dims)
	}
	return out, nil
}

// Dimensions returns the configured dimensionality.
func (p *Provider) Dimensions() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dims()
}

// ModelID identifies the mock in logs.
func (p *Provider) ModelID() string { return "mock-embeddings" }

func (p *Provider) dims() int {
	if p.Dims > 0 {
		return p.Dims
	}
	return 8
}

// vectorFor folds the text bytes into a fixed-size vector. Identical inputs
// always produce identical vectors.
func vectorFor(text string, dims int) []float32 {
	v := make([]float32, dims)
	for i, b := range []byte(text) {
		v[i%dims] += float32(b) / 255
	}
	return v
}
