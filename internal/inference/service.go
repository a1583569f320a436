package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/cache"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/classify"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/medinfo"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/monitoring"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/textproc"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/vectorize"
)

// ErrEmptyInput indicates the symptom text was empty after normalization.
var ErrEmptyInput = errors.New("inference: no valid symptoms provided")

// Disclaimer is attached to predictions below the confidence bar.
const Disclaimer = "Low confidence prediction. Please consult a healthcare professional for accurate diagnosis."

// Prediction is one ranked disease candidate.
type Prediction struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

// Result is a complete prediction for one symptom description.
type Result struct {
	OriginalInput   string       `json:"original_input"`
	CleanedInput    string       `json:"cleaned_input"`
	PrimaryDisease  string       `json:"primary_disease"`
	Confidence      float64      `json:"confidence"`
	Alternatives    []Prediction `json:"alternative_predictions"`
	ConfidenceLevel Level        `json:"confidence_level"`
	MedicalInfo     medinfo.Info `json:"medical_info"`
	Disclaimer      string       `json:"disclaimer,omitempty"`
}

// BatchItem is the outcome for one entry of a batch request. Items are
// independent; one failing entry never fails its neighbors.
type BatchItem struct {
	Index  int
	Result *Result
	Err    error
}

// Options tunes the request path.
type Options struct {
	TopK          int
	DisclaimerBar float64
	CacheTTL      time.Duration
}

// DefaultOptions returns the standard request-path settings.
func DefaultOptions() Options {
	return Options{
		TopK:          3,
		DisclaimerBar: 0.6,
		CacheTTL:      5 * time.Minute,
	}
}

// Deps are the collaborators a Service is built from. Resolver, Cache,
// and Audit are optional; the service degrades without them.
type Deps struct {
	Normalizer *textproc.Normalizer
	Vectorizer *vectorize.Vectorizer
	Classifier *classify.NaiveBayes
	Resolver   *medinfo.Resolver
	Cache      cache.Client
	Audit      monitoring.AuditStore
	Logger     *observability.Logger
	Options    Options
}

// Service answers symptom-to-disease prediction queries against a
// loaded model. It is safe for concurrent use; the model is read-only.
type Service struct {
	normalizer *textproc.Normalizer
	vectorizer *vectorize.Vectorizer
	classifier *classify.NaiveBayes
	resolver   *medinfo.Resolver
	cache      cache.Client
	audit      monitoring.AuditStore
	logger     *observability.Logger
	opts       Options
}

// NewService wires a prediction service from its dependencies.
func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = observability.NopLogger()
	}
	opts := deps.Options
	if opts.TopK <= 0 {
		opts.TopK = DefaultOptions().TopK
	}
	if opts.DisclaimerBar <= 0 {
		opts.DisclaimerBar = DefaultOptions().DisclaimerBar
	}
	audit := deps.Audit
	if audit == nil {
		audit = monitoring.NopStore{}
	}
	return &Service{
		normalizer: deps.Normalizer,
		vectorizer: deps.Vectorizer,
		classifier: deps.Classifier,
		resolver:   deps.Resolver,
		cache:      deps.Cache,
		audit:      audit,
		logger:     logger.WithComponent("inference"),
		opts:       opts,
	}
}

// Predict runs the full pipeline for one symptom description:
// normalize, vectorize, classify, rank, attach reference information.
func (s *Service) Predict(ctx context.Context, rawText string) (*Result, error) {
	start := time.Now()

	cleaned := s.normalizer.Normalize(rawText)
	if cleaned == "" {
		return nil, ErrEmptyInput
	}

	key := cache.PredictionKey(cleaned)
	if cached := s.cacheGet(ctx, key); cached != nil {
		cached.OriginalInput = rawText
		return cached, nil
	}

	vec, err := s.vectorizer.Transform(cleaned)
	if err != nil {
		return nil, fmt.Errorf("vectorize input: %w", err)
	}
	ranked, err := s.classifier.PredictTopK(vec, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("classify input: %w", err)
	}
	if len(ranked) == 0 {
		return nil, errors.New("inference: classifier returned no candidates")
	}

	primary := ranked[0]
	alternatives := make([]Prediction, 0, len(ranked)-1)
	for _, cand := range ranked[1:] {
		alternatives = append(alternatives, Prediction{
			Disease:    cand.Label,
			Confidence: cand.Probability,
		})
	}

	result := &Result{
		OriginalInput:   rawText,
		CleanedInput:    cleaned,
		PrimaryDisease:  primary.Label,
		Confidence:      primary.Probability,
		Alternatives:    alternatives,
		ConfidenceLevel: LevelFor(primary.Probability),
		MedicalInfo:     medinfo.EmptyInfo(),
	}
	if s.resolver != nil {
		result.MedicalInfo = s.resolver.Lookup(primary.Label)
	}
	if primary.Probability < s.opts.DisclaimerBar {
		result.Disclaimer = Disclaimer
	}

	s.cacheSet(ctx, key, result)
	s.recordAudit(ctx, key, result, time.Since(start))

	s.logger.Debug().
		Str("disease", result.PrimaryDisease).
		Float64("confidence", result.Confidence).
		Str("level", string(result.ConfidenceLevel)).
		Dur("latency", time.Since(start)).
		Msg("Prediction served")

	return result, nil
}

// PredictBatch predicts every entry independently and preserves input
// order. The returned slice always has one item per input.
func (s *Service) PredictBatch(ctx context.Context, inputs []string) []BatchItem {
	items := make([]BatchItem, len(inputs))
	for i, text := range inputs {
		result, err := s.Predict(ctx, text)
		items[i] = BatchItem{Index: i, Result: result, Err: err}
	}
	return items
}

func (s *Service) cacheGet(ctx context.Context, key string) *Result {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn().Err(err).Msg("Prediction cache read failed")
		}
		return nil
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding undecodable cache entry")
		return nil
	}
	return &result
}

func (s *Service) cacheSet(ctx context.Context, key string, result *Result) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.opts.CacheTTL); err != nil {
		s.logger.Warn().Err(err).Msg("Prediction cache write failed")
	}
}

// recordAudit stores the prediction event. Audit failures are logged
// and absorbed; the prediction already succeeded.
func (s *Service) recordAudit(ctx context.Context, key string, result *Result, latency time.Duration) {
	event := monitoring.PredictionEvent{
		InputHash:       key,
		PrimaryDisease:  result.PrimaryDisease,
		Confidence:      result.Confidence,
		ConfidenceLevel: string(result.ConfidenceLevel),
		LatencyMs:       latency.Milliseconds(),
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record prediction event")
	}
}
