package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/flueprint/flueprint/internal/apierr"
)

// errorBody is the single error shape every endpoint returns.
type errorBody struct {
	Error   apierr.Kind `json:"error"`
	Message string      `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

// writeError maps err onto the error taxonomy: the kind picks the HTTP
// status, the message is the caller-facing text. Unclassified errors surface
// as server_error with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apierr.KindOf(err)
	if kind.HTTPStatus() >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed", "kind", kind, "error", err)
	} else {
		s.logger.WarnContext(r.Context(), "request rejected", "kind", kind, "error", err)
	}
	s.writeJSON(w, kind.HTTPStatus(), errorBody{Error: kind, Message: apierr.MessageOf(err)})
}

// decodeBody decodes the JSON request body into v. Unknown fields are
// rejected so typos in request payloads fail loudly.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apierr.Wrap(apierr.BadRequest, err, "malformed JSON body")
	}
	return nil
}
