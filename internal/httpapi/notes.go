package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/flueprint/flueprint/internal/apierr"
	"github.com/flueprint/flueprint/internal/gateway"
)

// notesRequest is the inbound interpretation request. Besides the transcript
// it carries the session context the task instruction is assembled from.
type notesRequest struct {
	Transcript string `json:"transcript"`

	// ChecklistItems lists checklist item IDs already ticked by the operator.
	ChecklistItems []string `json:"checklistItems,omitempty"`

	// DepotSections carries sections captured earlier in the session. Clients
	// send either a bare array or an object with a "sections" key; both are
	// accepted.
	DepotSections json.RawMessage `json:"depotSections,omitempty"`

	// AlreadyCaptured is the flat-array spelling of DepotSections. When both
	// are present the entries are concatenated.
	AlreadyCaptured []gateway.DepotSection `json:"alreadyCaptured,omitempty"`

	SectionHints map[string]string `json:"sectionHints,omitempty"`

	// ForceStructured is accepted for request-shape compatibility; structured
	// output is the only mode this service produces.
	ForceStructured bool `json:"forceStructured,omitempty"`

	CustomInstructions string `json:"customInstructions,omitempty"`
}

// handleNotes serves POST /api/v1/notes: run the depot-notes task over the
// transcript and return the normalized result.
func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	var req notesRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	captured, err := decodeDepotSections(req.DepotSections)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	captured = append(captured, req.AlreadyCaptured...)

	result, err := s.gateway.Interpret(r.Context(), gateway.InterpretRequest{
		Transcript:         req.Transcript,
		AlreadyCaptured:    captured,
		CheckedItems:       req.ChecklistItems,
		SectionHints:       req.SectionHints,
		CustomInstructions: req.CustomInstructions,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

// decodeDepotSections accepts either a bare section array or an object
// wrapping one under a "sections" key.
func decodeDepotSections(raw json.RawMessage) ([]gateway.DepotSection, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var sections []gateway.DepotSection
	if err := json.Unmarshal(raw, &sections); err == nil {
		return sections, nil
	}

	var wrapped struct {
		Sections []gateway.DepotSection `json:"sections"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, apierr.Wrap(apierr.BadRequest, err, "depotSections must be a section array or an object with a sections key")
	}
	return wrapped.Sections, nil
}
