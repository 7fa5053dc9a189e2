package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/flueprint/flueprint/internal/apierr"
	"github.com/flueprint/flueprint/internal/recommend"
)

// recommendationsRequest carries either a ready-made requirements record or a
// transcript to extract one from.
type recommendationsRequest struct {
	// Requirements, when set, is scored as-is.
	Requirements *recommend.Requirements `json:"requirements,omitempty"`

	// Transcript is used when Requirements is absent. Extraction defaults to
	// rule-based keyword scanning; set UseModel for the AI extraction path.
	Transcript string `json:"transcript,omitempty"`
	UseModel   bool   `json:"useModel,omitempty"`

	// TopN caps the tiered options returned. Zero means the default (3).
	TopN int `json:"topN,omitempty"`
}

// recommendationsResponse returns the scored tiers alongside the requirements
// record they were derived from, so callers can show what was understood.
type recommendationsResponse struct {
	Requirements recommend.Requirements   `json:"requirements"`
	Options      []recommend.TieredOption `json:"options"`
}

// handleRecommendations serves POST /api/v1/recommendations.
func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationsRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	reqs, err := s.resolveRequirements(r, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	options := s.engine.TopTiers(reqs, req.TopN)
	s.metrics.ScoringDuration.Record(r.Context(), time.Since(start).Seconds())

	s.writeJSON(w, http.StatusOK, recommendationsResponse{
		Requirements: reqs,
		Options:      options,
	})
}

func (s *Server) resolveRequirements(r *http.Request, req recommendationsRequest) (recommend.Requirements, error) {
	if req.Requirements != nil {
		return *req.Requirements, nil
	}
	if strings.TrimSpace(req.Transcript) == "" {
		return recommend.Requirements{}, apierr.New(apierr.BadRequest, "either requirements or a transcript is required")
	}

	if req.UseModel {
		result, err := s.gateway.ExtractRequirements(r.Context(), req.Transcript)
		if err != nil {
			return recommend.Requirements{}, err
		}
		var reqs recommend.Requirements
		if err := result.Decode(&reqs); err != nil {
			return recommend.Requirements{}, apierr.Wrap(apierr.ServerError, err, "decode extracted requirements")
		}
		return reqs, nil
	}

	return recommend.ExtractRequirements(req.Transcript, s.engine.Catalog()), nil
}
