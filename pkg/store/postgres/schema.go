package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ─────────────────────────────────────────────────────────────────────────────
// DDL — session snapshots
// ─────────────────────────────────────────────────────────────────────────────

const ddlSessions = `
CREATE TABLE IF NOT EXISTS survey_sessions (
    user_id    TEXT         NOT NULL,
    name       TEXT         NOT NULL,
    snapshot   JSONB        NOT NULL,
    updated_at TIMESTAMPTZ  NOT NULL DEFAULT now(),
    PRIMARY KEY (user_id, name)
);

CREATE INDEX IF NOT EXISTS idx_survey_sessions_user_updated
    ON survey_sessions (user_id, updated_at DESC);
`

// ─────────────────────────────────────────────────────────────────────────────
// DDL — reference material
// ─────────────────────────────────────────────────────────────────────────────

const ddlReferenceSnippets = `
CREATE TABLE IF NOT EXISTS reference_snippets (
    id         TEXT         PRIMARY KEY,
    title      TEXT         NOT NULL DEFAULT '',
    content    TEXT         NOT NULL,
    topic      TEXT         NOT NULL DEFAULT '',
    embedding  vector(%d),
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reference_snippets_created
    ON reference_snippets (created_at DESC);

CREATE INDEX IF NOT EXISTS idx_reference_snippets_fts
    ON reference_snippets USING GIN (to_tsvector('english', title || ' ' || content));

CREATE INDEX IF NOT EXISTS idx_reference_snippets_embedding
    ON reference_snippets USING hnsw (embedding vector_cosine_ops);
`

// Migrate creates the pgvector extension and all tables and indexes required
// by the store. It is idempotent and safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool, embeddingDimensions int) error {
	if embeddingDimensions <= 0 {
		embeddingDimensions = 1536
	}

	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		ddlSessions,
		fmt.Sprintf(ddlReferenceSnippets, embeddingDimensions),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
