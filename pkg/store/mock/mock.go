// Package mock provides in-memory test doubles for the store interfaces.
package mock

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/flueprint/flueprint/pkg/store"
)

// SessionStore is an in-memory implementation of store.SessionStore.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]entry

	// SaveErr, GetErr, if non-nil, are returned by the corresponding methods.
	SaveErr error
	GetErr  error
}

type entry struct {
	blob      json.RawMessage
	updatedAt time.Time
}

// Ensure interface compliance at compile time.
var (
	_ store.SessionStore   = (*SessionStore)(nil)
	_ store.ReferenceStore = (*ReferenceStore)(nil)
)

func key(userID, name string) string { return userID + "\x00" + name }

// Save implements store.SessionStore.
func (s *SessionStore) Save(ctx context.Context, userID, name string, blob json.RawMessage) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[string]entry)
	}
	cp := make(json.RawMessage, len(blob))
	copy(cp, blob)
	s.sessions[key(userID, name)] = entry{blob: cp, updatedAt: time.Now()}
	return nil
}

// Get implements store.SessionStore.
func (s *SessionStore) Get(ctx context.Context, userID, name string) (json.RawMessage, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[key(userID, name)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return e.blob, nil
}

// List implements store.SessionStore.
func (s *SessionStore) List(ctx context.Context, userID string) ([]store.SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var infos []store.SessionInfo
	prefix := userID + "\x00"
	for k, e := range s.sessions {
		if strings.HasPrefix(k, prefix) {
			infos = append(infos, store.SessionInfo{
				Name:      strings.TrimPrefix(k, prefix),
				UpdatedAt: e.updatedAt,
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].UpdatedAt.After(infos[j].UpdatedAt) })
	return infos, nil
}

// Delete implements store.SessionStore.
func (s *SessionStore) Delete(ctx context.Context, userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key(userID, name))
	return nil
}

// ReferenceStore is an in-memory implementation of store.ReferenceStore.
// Recent performs naive substring matching; SearchSemantic returns snippets
// in insertion order. Good enough for prompt-assembly tests.
type ReferenceStore struct {
	mu       sync.Mutex
	snippets []store.Snippet

	// RecentErr, if non-nil, is returned by Recent.
	RecentErr error

	// RecentCalls records every query passed to Recent.
	RecentCalls []string
}

// Add implements store.ReferenceStore.
func (r *ReferenceStore) Add(ctx context.Context, snippet store.Snippet, _ []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.snippets {
		if s.ID == snippet.ID {
			r.snippets[i] = snippet
			return nil
		}
	}
	r.snippets = append(r.snippets, snippet)
	return nil
}

// Recent implements store.ReferenceStore.
func (r *ReferenceStore) Recent(ctx context.Context, query string, limit int) ([]store.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RecentCalls = append(r.RecentCalls, query)
	if r.RecentErr != nil {
		return nil, r.RecentErr
	}

	var out []store.Snippet
	lower := strings.ToLower(query)
	for _, s := range r.snippets {
		if query == "" ||
			strings.Contains(strings.ToLower(s.Title), lower) ||
			strings.Contains(strings.ToLower(s.Content), lower) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SearchSemantic implements store.ReferenceStore.
func (r *ReferenceStore) SearchSemantic(ctx context.Context, _ []float32, topK int) ([]store.Snippet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]store.Snippet, len(r.snippets))
	copy(out, r.snippets)
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}
