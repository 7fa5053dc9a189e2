package httpapi

import (
	"net/http"

	"github.com/flueprint/flueprint/internal/schema"
)

// schemaResponse exposes the active taxonomy so clients can render section
// pickers and checklist UIs from the server's source of truth.
type schemaResponse struct {
	Sections  []schema.CanonicalSection `json:"sections"`
	Checklist []schema.ChecklistItem    `json:"checklist"`
}

// handleSchema serves GET /api/v1/schema.
func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, schemaResponse{
		Sections:  s.schema.Sections(),
		Checklist: s.schema.Checklist(),
	})
}
