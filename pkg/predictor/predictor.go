// Package predictor is the public entry point for serving disease
// predictions: it loads trained artifacts and reference data per the
// configuration and exposes the prediction operations.
package predictor

import (
	"context"
	"fmt"
	"strings"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/cache"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/config"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/inference"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/medinfo"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/model"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/monitoring"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/textproc"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/vectorize"
)

// ErrModelsNotFound is re-exported so callers can distinguish a missing
// model from other startup failures.
var ErrModelsNotFound = model.ErrModelsNotFound

// ModelInfo summarizes the loaded model for diagnostics endpoints.
type ModelInfo struct {
	Loaded          bool     `json:"loaded"`
	ModelType       string   `json:"model_type"`
	VectorizerType  string   `json:"vectorizer_type"`
	FeatureCount    int      `json:"feature_count"`
	DiseaseCount    int      `json:"disease_count"`
	Diseases        []string `json:"diseases"`
	TrainingSamples int      `json:"training_samples"`
	TrainedAt       string   `json:"trained_at,omitempty"`
	ReferenceRows   int      `json:"reference_rows"`
}

// Predictor owns a loaded model and its supporting services. Missing
// trained artifacts are fatal; a missing reference table or an
// unreachable cache backend degrade with a warning.
type Predictor struct {
	service  *inference.Service
	metadata *model.Metadata
	classes  []string
	refRows  int
	cache    cache.Client
	audit    monitoring.AuditStore
	logger   *observability.Logger
}

// New loads artifacts and wires the prediction service per cfg.
func New(cfg *config.Config, logger *observability.Logger) (*Predictor, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	logger = logger.WithComponent("predictor")

	store := model.NewStore(cfg.Paths.ModelsDir, logger)
	artifacts, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load model artifacts: %w", err)
	}

	vectorizer := vectorize.NewFromSpace(artifacts.Space)
	normalizer := textproc.NewNormalizer(logger, correctorFromSpace(artifacts.Space))

	var resolver *medinfo.Resolver
	refRows := 0
	if records, err := medinfo.LoadTable(cfg.Paths.MedicalInfo, logger); err != nil {
		logger.Warn().Err(err).Str("path", cfg.Paths.MedicalInfo).
			Msg("Reference table unavailable, medical guidance disabled")
	} else {
		resolver = medinfo.NewResolver(records)
		refRows = resolver.Len()
	}

	cacheClient := buildCache(cfg, logger)
	auditStore := buildAudit(cfg, logger)

	service := inference.NewService(inference.Deps{
		Normalizer: normalizer,
		Vectorizer: vectorizer,
		Classifier: artifacts.Classifier,
		Resolver:   resolver,
		Cache:      cacheClient,
		Audit:      auditStore,
		Logger:     logger,
		Options: inference.Options{
			TopK:          cfg.Inference.TopK,
			DisclaimerBar: cfg.Inference.DisclaimerBar,
			CacheTTL:      cfg.Cache.TTL,
		},
	})

	logger.Info().
		Int("features", artifacts.Space.Dimension()).
		Int("diseases", len(artifacts.Classifier.Classes)).
		Int("reference_rows", refRows).
		Msg("Model loaded")

	return &Predictor{
		service:  service,
		metadata: artifacts.Metadata,
		classes:  artifacts.Classifier.Classes,
		refRows:  refRows,
		cache:    cacheClient,
		audit:    auditStore,
		logger:   logger,
	}, nil
}

// Predict answers one symptom description.
func (p *Predictor) Predict(ctx context.Context, text string) (*inference.Result, error) {
	return p.service.Predict(ctx, text)
}

// PredictBatch answers several descriptions independently, in order.
func (p *Predictor) PredictBatch(ctx context.Context, inputs []string) []inference.BatchItem {
	return p.service.PredictBatch(ctx, inputs)
}

// Info describes the loaded model.
func (p *Predictor) Info() ModelInfo {
	info := ModelInfo{
		Loaded:        true,
		DiseaseCount:  len(p.classes),
		Diseases:      p.classes,
		ReferenceRows: p.refRows,
	}
	if p.metadata != nil {
		info.ModelType = p.metadata.ModelType
		info.VectorizerType = p.metadata.VectorizerType
		info.FeatureCount = p.metadata.FeatureCount
		info.TrainingSamples = p.metadata.TrainingSamples
		info.TrainedAt = p.metadata.TrainedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return info
}

// Close releases the cache and audit backends.
func (p *Predictor) Close() error {
	var firstErr error
	if p.cache != nil {
		if err := p.cache.Close(); err != nil {
			firstErr = err
		}
	}
	if p.audit != nil {
		if err := p.audit.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// correctorFromSpace seeds the spell corrector with the vocabulary's
// unigram terms so inference-time correction targets exactly the terms
// the model can score.
func correctorFromSpace(space *vectorize.FeatureSpace) *textproc.SpellCorrector {
	corrector := textproc.NewSpellCorrector()
	for _, term := range space.Terms {
		if !strings.Contains(term, " ") {
			corrector.Learn(term, 1)
		}
	}
	return corrector
}

func buildCache(cfg *config.Config, logger *observability.Logger) cache.Client {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err == nil {
			return client
		}
		logger.Warn().Err(err).Msg("Redis unavailable, using in-memory prediction cache")
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries)
}

func buildAudit(cfg *config.Config, logger *observability.Logger) monitoring.AuditStore {
	if !cfg.Audit.Enabled {
		return monitoring.NopStore{}
	}
	driver := "sqlite3"
	if cfg.Audit.Driver == "postgres" {
		driver = "postgres"
	}
	store, err := monitoring.Open(driver, cfg.AuditDSN(), logger)
	if err != nil {
		logger.Warn().Err(err).Msg("Audit store unavailable, prediction events will not be recorded")
		return monitoring.NopStore{}
	}
	return store
}
