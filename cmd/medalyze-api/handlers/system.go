package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/pkg/predictor"
)

// SystemHandler serves health and model diagnostics.
type SystemHandler struct {
	logger    *observability.Logger
	predictor *predictor.Predictor
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(logger *observability.Logger, p *predictor.Predictor) *SystemHandler {
	return &SystemHandler{logger: logger, predictor: p}
}

// HealthResponseDTO represents the health check response.
type HealthResponseDTO struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	ModelLoaded bool   `json:"model_loaded"`
	Timestamp   string `json:"timestamp"`
}

// Health handles GET /health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponseDTO{
		Status:      "healthy",
		Service:     "medalyze",
		ModelLoaded: h.predictor != nil,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode health response")
	}
}

// ModelInfo handles GET /model-info.
func (h *SystemHandler) ModelInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.predictor.Info()); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode model info response")
	}
}
