// Package store defines the persistence interfaces consumed by the flueprint
// pipeline.
//
// Two concerns live here:
//
//   - [SessionStore]: named survey-session snapshots. The browser client owns
//     the snapshot format, so values are opaque JSON blobs keyed by session
//     name within a user's namespace.
//   - [ReferenceStore]: reference material (manufacturer bulletins, spec
//     sheets, prior survey notes) that the gateway splices into its task
//     instructions. Lookup is recency-ordered; when an embeddings provider is
//     configured, semantic search over the same snippets is also available.
//
// All interfaces are public so alternative backends (Postgres, in-memory, …)
// can be supplied without depending on flueprint internals. Every
// implementation must be safe for concurrent use.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested session or snippet does not exist.
var ErrNotFound = errors.New("store: not found")

// SessionInfo describes a stored session snapshot without its payload.
type SessionInfo struct {
	// Name is the user-chosen session key (typically the property address or
	// customer name).
	Name string

	// UpdatedAt is when the snapshot was last written.
	UpdatedAt time.Time
}

// SessionStore persists named session snapshots as opaque JSON blobs.
type SessionStore interface {
	// Save upserts the snapshot stored under (userID, name).
	Save(ctx context.Context, userID, name string, blob json.RawMessage) error

	// Get returns the snapshot stored under (userID, name), or [ErrNotFound].
	Get(ctx context.Context, userID, name string) (json.RawMessage, error)

	// List returns all session names for userID, most recently updated first.
	List(ctx context.Context, userID string) ([]SessionInfo, error)

	// Delete removes the snapshot under (userID, name). Deleting a session
	// that does not exist is not an error.
	Delete(ctx context.Context, userID, name string) error
}

// Snippet is a single piece of reference material.
type Snippet struct {
	// ID uniquely identifies the snippet.
	ID string

	// Title is a short human-readable label (e.g. "Mixergy MX-180 spec sheet").
	Title string

	// Content is the snippet body spliced into gateway instructions.
	Content string

	// Topic groups snippets (e.g. "cylinders", "flue-regs"). Optional.
	Topic string

	// CreatedAt orders snippets for recency-first retrieval.
	CreatedAt time.Time
}

// ReferenceStore holds reference material for prompt enrichment.
type ReferenceStore interface {
	// Add stores a snippet. An existing snippet with the same ID is replaced.
	// embedding may be nil when no embeddings provider is configured; such
	// snippets are still reachable through Recent.
	Add(ctx context.Context, snippet Snippet, embedding []float32) error

	// Recent returns up to limit snippets matching the keyword query, newest
	// first. An empty query returns the newest snippets unconditionally.
	Recent(ctx context.Context, query string, limit int) ([]Snippet, error)

	// SearchSemantic returns the topK snippets whose embeddings are closest to
	// the query embedding, most similar first.
	SearchSemantic(ctx context.Context, embedding []float32, topK int) ([]Snippet, error)
}
