// Package handlers provides HTTP handlers for the prediction API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/inference"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/medinfo"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/pkg/predictor"
)

// Limits bounds request sizes.
type Limits struct {
	MaxInputLength int
	MaxBatchSize   int
}

// PredictionHandler handles disease prediction requests.
type PredictionHandler struct {
	logger    *observability.Logger
	predictor *predictor.Predictor
	limits    Limits
}

// NewPredictionHandler creates a new prediction handler.
func NewPredictionHandler(logger *observability.Logger, p *predictor.Predictor, limits Limits) *PredictionHandler {
	return &PredictionHandler{
		logger:    logger,
		predictor: p,
		limits:    limits,
	}
}

// PredictRequestDTO represents a single prediction request.
type PredictRequestDTO struct {
	Symptoms string `json:"symptom"`
}

// BatchRequestDTO represents a batch prediction request.
type BatchRequestDTO struct {
	SymptomsList []string `json:"symptoms"`
}

// InputDTO echoes the analyzed input back to the caller.
type InputDTO struct {
	Original string `json:"original"`
	Cleaned  string `json:"cleaned"`
}

// AlternativeDTO is one lower-ranked disease candidate.
type AlternativeDTO struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

// PredictionDTO is the ranked prediction block of a response.
type PredictionDTO struct {
	PrimaryDisease         string           `json:"primary_disease"`
	Confidence             float64          `json:"confidence"`
	ConfidenceLevel        string           `json:"confidence_level"`
	AlternativePredictions []AlternativeDTO `json:"alternative_predictions"`
}

// PredictResponseDTO represents a single prediction response.
type PredictResponseDTO struct {
	Success     bool          `json:"success"`
	Timestamp   string        `json:"timestamp"`
	Input       InputDTO      `json:"input"`
	Prediction  PredictionDTO `json:"prediction"`
	MedicalInfo medinfo.Info  `json:"medical_info"`
	Disclaimer  string        `json:"disclaimer,omitempty"`
}

// BatchItemDTO is the outcome for one batch entry.
type BatchItemDTO struct {
	Index       int            `json:"index"`
	Success     bool           `json:"success"`
	Input       *InputDTO      `json:"input,omitempty"`
	Prediction  *PredictionDTO `json:"prediction,omitempty"`
	MedicalInfo *medinfo.Info  `json:"medical_info,omitempty"`
	Disclaimer  string         `json:"disclaimer,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// BatchResponseDTO represents a batch prediction response.
type BatchResponseDTO struct {
	Success   bool           `json:"success"`
	Timestamp string         `json:"timestamp"`
	BatchSize int            `json:"batch_size"`
	Results   []BatchItemDTO `json:"results"`
}

// Predict handles POST /predict_disease.
func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO PredictRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if reqDTO.Symptoms == "" {
		h.writeError(w, http.StatusBadRequest, "symptom is required", "")
		return
	}
	if len(reqDTO.Symptoms) > h.limits.MaxInputLength {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("symptom must not exceed %d characters", h.limits.MaxInputLength), "")
		return
	}

	result, err := h.predictor.Predict(ctx, reqDTO.Symptoms)
	if err != nil {
		if errors.Is(err, inference.ErrEmptyInput) {
			h.writeError(w, http.StatusBadRequest, "no valid symptoms provided", "")
			return
		}
		h.logger.Error().Err(err).Msg("Prediction failed")
		h.writeError(w, http.StatusInternalServerError, "prediction failed", "")
		return
	}

	respDTO := PredictResponseDTO{
		Success:     true,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Input:       InputDTO{Original: result.OriginalInput, Cleaned: result.CleanedInput},
		Prediction:  toPredictionDTO(result),
		MedicalInfo: result.MedicalInfo,
		Disclaimer:  result.Disclaimer,
	}

	h.writeJSON(w, http.StatusOK, respDTO)
}

// PredictBatch handles POST /predict_batch.
func (h *PredictionHandler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO BatchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if len(reqDTO.SymptomsList) == 0 {
		h.writeError(w, http.StatusBadRequest, "symptoms must not be empty", "")
		return
	}
	if len(reqDTO.SymptomsList) > h.limits.MaxBatchSize {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("symptoms must not exceed %d entries", h.limits.MaxBatchSize), "")
		return
	}
	for i, symptoms := range reqDTO.SymptomsList {
		if len(symptoms) > h.limits.MaxInputLength {
			h.writeError(w, http.StatusBadRequest,
				fmt.Sprintf("entry %d exceeds %d characters", i, h.limits.MaxInputLength), "")
			return
		}
	}

	items := h.predictor.PredictBatch(ctx, reqDTO.SymptomsList)

	results := make([]BatchItemDTO, len(items))
	for i, item := range items {
		results[i] = toBatchItemDTO(item)
	}

	respDTO := BatchResponseDTO{
		Success:   true,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		BatchSize: len(results),
		Results:   results,
	}

	h.writeJSON(w, http.StatusOK, respDTO)
}

func toPredictionDTO(result *inference.Result) PredictionDTO {
	alternatives := make([]AlternativeDTO, 0, len(result.Alternatives))
	for _, alt := range result.Alternatives {
		alternatives = append(alternatives, AlternativeDTO{
			Disease:    alt.Disease,
			Confidence: alt.Confidence,
		})
	}
	return PredictionDTO{
		PrimaryDisease:         result.PrimaryDisease,
		Confidence:             result.Confidence,
		ConfidenceLevel:        string(result.ConfidenceLevel),
		AlternativePredictions: alternatives,
	}
}

func toBatchItemDTO(item inference.BatchItem) BatchItemDTO {
	dto := BatchItemDTO{Index: item.Index}
	if item.Err != nil {
		if errors.Is(item.Err, inference.ErrEmptyInput) {
			dto.Error = "no valid symptoms provided"
		} else {
			dto.Error = "prediction failed"
		}
		return dto
	}

	result := item.Result
	prediction := toPredictionDTO(result)
	dto.Success = true
	dto.Input = &InputDTO{Original: result.OriginalInput, Cleaned: result.CleanedInput}
	dto.Prediction = &prediction
	dto.MedicalInfo = &result.MedicalInfo
	dto.Disclaimer = result.Disclaimer
	return dto
}

func (h *PredictionHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *PredictionHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
