package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/flueprint/flueprint/internal/apierr"
	"github.com/flueprint/flueprint/internal/auth"
	"github.com/flueprint/flueprint/pkg/store"
)

// maxSessionBlobBytes bounds a session snapshot upload.
const maxSessionBlobBytes = 1 << 20

// sessionInfo is the list-endpoint view of a stored session.
type sessionInfo struct {
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// handleListSessions serves GET /api/v1/sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		s.writeError(w, r, errSessionsDisabled())
		return
	}

	infos, err := s.sessions.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.DBError, err, "list sessions"))
		return
	}

	out := make([]sessionInfo, 0, len(infos))
	for _, info := range infos {
		out = append(out, sessionInfo{Name: info.Name, UpdatedAt: info.UpdatedAt})
	}
	s.writeJSON(w, http.StatusOK, map[string][]sessionInfo{"sessions": out})
}

// handleGetSession serves GET /api/v1/sessions/{name}. The stored blob is
// returned verbatim.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		s.writeError(w, r, errSessionsDisabled())
		return
	}

	name := mux.Vars(r)["name"]
	blob, err := s.sessions.Get(r.Context(), auth.UserID(r.Context()), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSON(w, http.StatusNotFound, errorBody{
				Error:   apierr.BadRequest,
				Message: "session " + name + " not found",
			})
			return
		}
		s.writeError(w, r, apierr.Wrap(apierr.DBError, err, "load session"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(blob); err != nil {
		s.logger.Error("write session blob", "error", err)
	}
}

// handlePutSession serves PUT /api/v1/sessions/{name}. The body is stored as
// an opaque JSON blob; it only has to be well-formed JSON.
func (s *Server) handlePutSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		s.writeError(w, r, errSessionsDisabled())
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxSessionBlobBytes+1))
	if err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.BadRequest, err, "read request body"))
		return
	}
	if len(body) > maxSessionBlobBytes {
		s.writeError(w, r, apierr.New(apierr.ValidationError, "session snapshot exceeds %d bytes", maxSessionBlobBytes))
		return
	}
	if !json.Valid(body) {
		s.writeError(w, r, apierr.New(apierr.BadRequest, "session snapshot must be valid JSON"))
		return
	}

	name := mux.Vars(r)["name"]
	if err := s.sessions.Save(r.Context(), auth.UserID(r.Context()), name, body); err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.DBError, err, "save session"))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "name": name})
}

// handleDeleteSession serves DELETE /api/v1/sessions/{name}. Deleting an
// absent session succeeds.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		s.writeError(w, r, errSessionsDisabled())
		return
	}

	name := mux.Vars(r)["name"]
	if err := s.sessions.Delete(r.Context(), auth.UserID(r.Context()), name); err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.DBError, err, "delete session"))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}

func errSessionsDisabled() error {
	return apierr.New(apierr.ServerError, "session persistence is not configured")
}
