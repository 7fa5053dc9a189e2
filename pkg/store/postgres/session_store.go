package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flueprint/flueprint/pkg/store"
)

// SessionStoreImpl persists named session snapshots in the survey_sessions
// table, one row per (user, session name) pair.
//
// Obtain one via [Store.Sessions] rather than constructing directly.
// All methods are safe for concurrent use.
type SessionStoreImpl struct {
	pool *pgxpool.Pool
}

// Save implements [store.SessionStore]. It upserts the snapshot stored under
// (userID, name), refreshing updated_at on every write.
func (s *SessionStoreImpl) Save(ctx context.Context, userID, name string, blob json.RawMessage) error {
	const q = `
		INSERT INTO survey_sessions (user_id, name, snapshot, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, name) DO UPDATE SET
		    snapshot   = EXCLUDED.snapshot,
		    updated_at = now()`

	_, err := s.pool.Exec(ctx, q, userID, name, blob)
	if err != nil {
		return fmt.Errorf("session store: save %q: %w", name, err)
	}
	return nil
}

// Get implements [store.SessionStore].
func (s *SessionStoreImpl) Get(ctx context.Context, userID, name string) (json.RawMessage, error) {
	const q = `
		SELECT snapshot
		FROM   survey_sessions
		WHERE  user_id = $1 AND name = $2`

	var blob json.RawMessage
	err := s.pool.QueryRow(ctx, q, userID, name).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session store: get %q: %w", name, err)
	}
	return blob, nil
}

// List implements [store.SessionStore]. Sessions are returned most recently
// updated first.
func (s *SessionStoreImpl) List(ctx context.Context, userID string) ([]store.SessionInfo, error) {
	const q = `
		SELECT name, updated_at
		FROM   survey_sessions
		WHERE  user_id = $1
		ORDER  BY updated_at DESC`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("session store: list: %w", err)
	}
	defer rows.Close()

	var infos []store.SessionInfo
	for rows.Next() {
		var info store.SessionInfo
		if err := rows.Scan(&info.Name, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("session store: scan: %w", err)
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session store: list rows: %w", err)
	}
	return infos, nil
}

// Delete implements [store.SessionStore]. Deleting an absent session is a no-op.
func (s *SessionStoreImpl) Delete(ctx context.Context, userID, name string) error {
	const q = `DELETE FROM survey_sessions WHERE user_id = $1 AND name = $2`

	_, err := s.pool.Exec(ctx, q, userID, name)
	if err != nil {
		return fmt.Errorf("session store: delete %q: %w", name, err)
	}
	return nil
}
