// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/cmd/medalyze-api/handlers"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/cmd/medalyze-api/middleware"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/config"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/pkg/predictor"
)

// NewRouter wires all routes and middleware.
func NewRouter(logger *observability.Logger, cfg *config.Config, p *predictor.Predictor) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	predictionHandler := handlers.NewPredictionHandler(logger, p, handlers.Limits{
		MaxInputLength: cfg.Inference.MaxInputLength,
		MaxBatchSize:   cfg.Inference.MaxBatchSize,
	})
	systemHandler := handlers.NewSystemHandler(logger, p)

	r.Get("/health", systemHandler.Health)
	r.Get("/model-info", systemHandler.ModelInfo)
	r.Post("/predict_disease", predictionHandler.Predict)
	r.Post("/predict_batch", predictionHandler.PredictBatch)

	return r
}
