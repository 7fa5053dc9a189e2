package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flueprint/flueprint/internal/apierr"
	"github.com/flueprint/flueprint/pkg/store"
)

const (
	defaultReferenceLimit = 10
	maxReferenceBodyBytes = 1 << 20
)

// referenceRequest is the snippet ingestion payload.
type referenceRequest struct {
	// ID is optional; one is generated when absent.
	ID      string `json:"id,omitempty"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Topic   string `json:"topic,omitempty"`
}

// handleAddReference serves POST /api/v1/references. The body is either a
// single reference object or a JSON array of them. When an embeddings
// provider is configured the snippets are embedded in one batch so they are
// reachable through semantic search; otherwise they are stored for recency
// lookup only.
func (s *Server) handleAddReference(w http.ResponseWriter, r *http.Request) {
	if s.references == nil {
		s.writeError(w, r, errReferencesDisabled())
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxReferenceBodyBytes))
	if err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.ServerError, err, "read request body"))
		return
	}
	reqs, batch, err := decodeReferenceRequests(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	for i := range reqs {
		if strings.TrimSpace(reqs[i].Content) == "" {
			s.writeError(w, r, apierr.New(apierr.BadRequest, "content must not be empty"))
			return
		}
		if reqs[i].ID == "" {
			reqs[i].ID = uuid.NewString()
		}
	}

	vectors := make([][]float32, len(reqs))
	if s.embedder != nil {
		texts := make([]string, len(reqs))
		for i, rq := range reqs {
			texts[i] = rq.Content
		}
		vecs, err := s.embedder.EmbedBatch(r.Context(), texts)
		if err != nil {
			// Recency lookup still works without vectors.
			s.logger.WarnContext(r.Context(), "embed reference snippets",
				"model", s.embedder.ModelID(), "count", len(texts), "error", err)
		} else if len(vecs) == len(reqs) {
			vectors = vecs
		}
	}

	now := time.Now()
	ids := make([]string, 0, len(reqs))
	for i, rq := range reqs {
		snippet := store.Snippet{
			ID:        rq.ID,
			Title:     rq.Title,
			Content:   rq.Content,
			Topic:     rq.Topic,
			CreatedAt: now,
		}
		if err := s.references.Add(r.Context(), snippet, vectors[i]); err != nil {
			s.writeError(w, r, apierr.Wrap(apierr.DBError, err, "store reference snippet"))
			return
		}
		ids = append(ids, rq.ID)
	}

	if batch {
		s.writeJSON(w, http.StatusCreated, map[string][]string{"ids": ids})
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": ids[0]})
}

// decodeReferenceRequests parses the ingestion body, accepting both the
// single-object and array shapes. The returned flag reports which shape was
// sent so the response can mirror it.
func decodeReferenceRequests(raw []byte) ([]referenceRequest, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var reqs []referenceRequest
		if err := decodeStrictJSON(trimmed, &reqs); err != nil {
			return nil, false, err
		}
		if len(reqs) == 0 {
			return nil, false, apierr.New(apierr.BadRequest, "reference batch must not be empty")
		}
		return reqs, true, nil
	}
	var req referenceRequest
	if err := decodeStrictJSON(trimmed, &req); err != nil {
		return nil, false, err
	}
	return []referenceRequest{req}, false, nil
}

func decodeStrictJSON(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apierr.Wrap(apierr.BadRequest, err, "malformed JSON body")
	}
	return nil
}

// handleSearchReferences serves GET /api/v1/references. The query parameter
// drives keyword matching by default; semantic=true routes through the
// embeddings provider instead.
func (s *Server) handleSearchReferences(w http.ResponseWriter, r *http.Request) {
	if s.references == nil {
		s.writeError(w, r, errReferencesDisabled())
		return
	}

	query := r.URL.Query().Get("query")
	limit := defaultReferenceLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.writeError(w, r, apierr.New(apierr.ValidationError, "limit must be a positive integer"))
			return
		}
		limit = n
	}

	var (
		snippets []store.Snippet
		err      error
	)
	if r.URL.Query().Get("semantic") == "true" {
		if s.embedder == nil {
			s.writeError(w, r, apierr.New(apierr.ValidationError, "semantic search requires an embeddings provider"))
			return
		}
		if strings.TrimSpace(query) == "" {
			s.writeError(w, r, apierr.New(apierr.BadRequest, "semantic search requires a query"))
			return
		}
		var vec []float32
		vec, err = s.embedder.Embed(r.Context(), query)
		if err != nil {
			s.writeError(w, r, apierr.Wrap(apierr.ServerError, err, "embed search query"))
			return
		}
		snippets, err = s.references.SearchSemantic(r.Context(), vec, limit)
	} else {
		snippets, err = s.references.Recent(r.Context(), query, limit)
	}
	if err != nil {
		s.writeError(w, r, apierr.Wrap(apierr.DBError, err, "search reference snippets"))
		return
	}

	out := make([]referenceView, 0, len(snippets))
	for _, sn := range snippets {
		out = append(out, referenceView{
			ID:        sn.ID,
			Title:     sn.Title,
			Content:   sn.Content,
			Topic:     sn.Topic,
			CreatedAt: sn.CreatedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string][]referenceView{"references": out})
}

type referenceView struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Topic     string    `json:"topic,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func errReferencesDisabled() error {
	return apierr.New(apierr.ServerError, "reference storage is not configured")
}
