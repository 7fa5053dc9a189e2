// Package postgres provides the PostgreSQL-backed implementation of the
// flueprint persistence interfaces (session snapshots and reference material).
//
// Both stores share a single [pgxpool.Pool]. The pgvector extension must be
// available in the target database; [Migrate] installs it automatically via
// CREATE EXTENSION IF NOT EXISTS.
//
// Usage:
//
//	store, err := postgres.NewStore(ctx, dsn, 1536)
//	if err != nil { … }
//
//	_ = store.Sessions().Save(ctx, userID, "12 Elm Road", blob)
//	snippets, _ := store.References().Recent(ctx, "unvented cylinder", 5)
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/flueprint/flueprint/pkg/store"
)

// Compile-time interface checks.
var (
	_ store.SessionStore   = (*SessionStoreImpl)(nil)
	_ store.ReferenceStore = (*ReferenceStoreImpl)(nil)
)

// Store is the central PostgreSQL-backed store for flueprint. It holds a
// single [pgxpool.Pool] and exposes the two persistence layers:
//
//   - [Store.Sessions] returns a [SessionStoreImpl] implementing [store.SessionStore]
//   - [Store.References] returns a [ReferenceStoreImpl] implementing [store.ReferenceStore]
//
// All operations are safe for concurrent use.
type Store struct {
	pool       *pgxpool.Pool
	sessions   *SessionStoreImpl
	references *ReferenceStoreImpl
}

// NewStore creates a new Store, establishes a connection pool to the
// PostgreSQL database at dsn, registers pgvector types on every connection,
// and runs [Migrate] to ensure all required tables and extensions exist.
//
// embeddingDimensions must match the output dimension of the embeddings model
// used to index reference snippets (e.g. 1536 for text-embedding-3-small).
// Changing this value after the first migration requires a manual schema change.
func NewStore(ctx context.Context, dsn string, embeddingDimensions int) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	// Register pgvector types on every new connection so that vector columns
	// can be scanned into and inserted from pgvector.Vector values.
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool, embeddingDimensions); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}

	return &Store{
		pool:       pool,
		sessions:   &SessionStoreImpl{pool: pool},
		references: &ReferenceStoreImpl{pool: pool},
	}, nil
}

// Sessions returns the session-snapshot store.
func (s *Store) Sessions() *SessionStoreImpl { return s.sessions }

// References returns the reference-material store.
func (s *Store) References() *ReferenceStoreImpl { return s.references }

// Ping checks database connectivity, for readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
