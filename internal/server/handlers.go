package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aristath/riskwatch/internal/domain"
)

// RiskScorer is the analyzer surface the HTTP layer consumes
type RiskScorer interface {
	CalculateRiskScore(ctx context.Context, assets []string) (domain.RiskMetrics, error)
}

// handleHealth reports liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRisk assesses the basket given in the assets query parameter
// (comma separated), falling back to the configured default basket.
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	assets := s.defaultAssets
	if raw := r.URL.Query().Get("assets"); raw != "" {
		assets = nil
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				assets = append(assets, trimmed)
			}
		}
	}

	if len(assets) == 0 {
		s.respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "at least one asset is required",
		})
		return
	}

	metrics, err := s.scorer.CalculateRiskScore(r.Context(), assets)
	if err != nil {
		s.log.Error().Err(err).Strs("assets", assets).Msg("Risk assessment failed")
		s.respondJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "risk assessment failed",
		})
		return
	}

	s.respondJSON(w, http.StatusOK, metrics)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}
