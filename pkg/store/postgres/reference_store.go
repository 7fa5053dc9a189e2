package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/flueprint/flueprint/pkg/store"
)

// defaultRecentLimit caps Recent results when the caller passes limit <= 0.
const defaultRecentLimit = 10

// ReferenceStoreImpl holds reference material in the reference_snippets table
// with a GIN full-text index for keyword lookup and a pgvector HNSW index for
// semantic search.
//
// Obtain one via [Store.References] rather than constructing directly.
// All methods are safe for concurrent use.
type ReferenceStoreImpl struct {
	pool *pgxpool.Pool
}

// Add implements [store.ReferenceStore]. A snippet with the same ID is
// completely replaced. embedding may be nil.
func (r *ReferenceStoreImpl) Add(ctx context.Context, snippet store.Snippet, embedding []float32) error {
	const q = `
		INSERT INTO reference_snippets (id, title, content, topic, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
		ON CONFLICT (id) DO UPDATE SET
		    title     = EXCLUDED.title,
		    content   = EXCLUDED.content,
		    topic     = EXCLUDED.topic,
		    embedding = EXCLUDED.embedding`

	var vec any
	if embedding != nil {
		v := pgvector.NewVector(embedding)
		vec = v
	}

	var createdAt any
	if !snippet.CreatedAt.IsZero() {
		createdAt = snippet.CreatedAt
	}

	_, err := r.pool.Exec(ctx, q, snippet.ID, snippet.Title, snippet.Content, snippet.Topic, vec, createdAt)
	if err != nil {
		return fmt.Errorf("reference store: add %q: %w", snippet.ID, err)
	}
	return nil
}

// Recent implements [store.ReferenceStore]. It performs a PostgreSQL
// full-text search over title and content and returns matches newest first.
// The query is passed to plainto_tsquery so no special operator syntax is
// required. An empty query returns the newest snippets unconditionally.
func (r *ReferenceStoreImpl) Recent(ctx context.Context, query string, limit int) ([]store.Snippet, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}

	var (
		rows pgx.Rows
		err  error
	)
	if query == "" {
		const q = `
			SELECT id, title, content, topic, created_at
			FROM   reference_snippets
			ORDER  BY created_at DESC
			LIMIT  $1`
		rows, err = r.pool.Query(ctx, q, limit)
	} else {
		const q = `
			SELECT id, title, content, topic, created_at
			FROM   reference_snippets
			WHERE  to_tsvector('english', title || ' ' || content) @@ plainto_tsquery('english', $1)
			ORDER  BY created_at DESC
			LIMIT  $2`
		rows, err = r.pool.Query(ctx, q, query, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("reference store: recent: %w", err)
	}
	return collectSnippets(rows)
}

// SearchSemantic implements [store.ReferenceStore]. It finds the topK
// snippets whose embeddings are closest (cosine distance) to the supplied
// query embedding, most similar first. Snippets without an embedding are
// never returned by this method.
func (r *ReferenceStoreImpl) SearchSemantic(ctx context.Context, embedding []float32, topK int) ([]store.Snippet, error) {
	if topK <= 0 {
		topK = defaultRecentLimit
	}

	const q = `
		SELECT id, title, content, topic, created_at
		FROM   reference_snippets
		WHERE  embedding IS NOT NULL
		ORDER  BY embedding <=> $1
		LIMIT  $2`

	rows, err := r.pool.Query(ctx, q, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("reference store: semantic search: %w", err)
	}
	return collectSnippets(rows)
}

// collectSnippets scans all rows into a snippet slice and closes rows.
func collectSnippets(rows pgx.Rows) ([]store.Snippet, error) {
	defer rows.Close()

	var snippets []store.Snippet
	for rows.Next() {
		var s store.Snippet
		if err := rows.Scan(&s.ID, &s.Title, &s.Content, &s.Topic, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("reference store: scan: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reference store: rows: %w", err)
	}
	return snippets, nil
}
