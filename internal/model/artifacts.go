// Package model defines the trained artifact set and its on-disk store.
package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/classify"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/vectorize"
)

// ErrModelsNotFound indicates the mandatory trained artifacts are absent.
// Serving must not start without them.
var ErrModelsNotFound = errors.New("model: trained model artifacts not found, train the model first")

// Artifact file names inside the models directory.
const (
	ClassifierFile = "disease_model.bin"
	VectorizerFile = "disease_vectorizer.bin"
	EncoderFile    = "label_encoder.bin"
	MetadataFile   = "model_metadata.bin"
)

// Metadata describes a training run. It is informational only; inference
// works without it.
type Metadata struct {
	ModelType       string    `msgpack:"model_type"`
	VectorizerType  string    `msgpack:"vectorizer_type"`
	FeatureCount    int       `msgpack:"feature_count"`
	DiseaseClasses  []string  `msgpack:"disease_classes"`
	TrainingSamples int       `msgpack:"training_samples"`
	TrainedAt       time.Time `msgpack:"trained_at"`
}

// Artifacts is one complete trained model: classifier, feature space,
// label encoder, and run metadata. A retrain produces a whole new
// Artifacts value; nothing is updated in place.
type Artifacts struct {
	Classifier *classify.NaiveBayes
	Space      *vectorize.FeatureSpace
	Encoder    *classify.LabelEncoder // optional
	Metadata   *Metadata              // optional
}

// Store reads and writes artifact sets under a models directory.
type Store struct {
	dir    string
	logger *observability.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *observability.Logger) *Store {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Store{dir: dir, logger: logger.WithComponent("model-store")}
}

// Save persists the full artifact set. Each file is written to a temp
// path and renamed into place so a crash never leaves a half-written
// artifact behind.
func (s *Store) Save(a *Artifacts) error {
	if a == nil || a.Classifier == nil || a.Space == nil {
		return errors.New("model: incomplete artifact set")
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create models dir: %w", err)
	}

	if err := s.writeFile(ClassifierFile, a.Classifier); err != nil {
		return err
	}
	if err := s.writeFile(VectorizerFile, a.Space); err != nil {
		return err
	}
	if a.Encoder != nil {
		if err := s.writeFile(EncoderFile, a.Encoder); err != nil {
			return err
		}
	}
	if a.Metadata != nil {
		if err := s.writeFile(MetadataFile, a.Metadata); err != nil {
			return err
		}
	}

	s.logger.Info().Str("dir", s.dir).Msg("Model artifacts saved")
	return nil
}

// Load reads the artifact set. The classifier and vectorizer are
// mandatory; a missing label encoder or metadata file degrades gracefully
// and is only logged.
func (s *Store) Load() (*Artifacts, error) {
	classifierPath := filepath.Join(s.dir, ClassifierFile)
	vectorizerPath := filepath.Join(s.dir, VectorizerFile)
	if !fileExists(classifierPath) || !fileExists(vectorizerPath) {
		return nil, ErrModelsNotFound
	}

	var nb classify.NaiveBayes
	if err := s.readFile(ClassifierFile, &nb); err != nil {
		return nil, err
	}
	var space vectorize.FeatureSpace
	if err := s.readFile(VectorizerFile, &space); err != nil {
		return nil, err
	}

	artifacts := &Artifacts{Classifier: &nb, Space: &space}

	var enc classify.LabelEncoder
	switch err := s.readFile(EncoderFile, &enc); {
	case err == nil:
		artifacts.Encoder = classify.NewLabelEncoderFromClasses(enc.Classes)
	case errors.Is(err, os.ErrNotExist):
		s.logger.Warn().Msg("Label encoder artifact missing, continuing without it")
	default:
		return nil, err
	}

	var meta Metadata
	switch err := s.readFile(MetadataFile, &meta); {
	case err == nil:
		artifacts.Metadata = &meta
	case errors.Is(err, os.ErrNotExist):
		s.logger.Warn().Msg("Model metadata artifact missing, continuing without it")
	default:
		return nil, err
	}

	s.logger.Info().
		Int("features", space.Dimension()).
		Int("classes", len(nb.Classes)).
		Msg("Model artifacts loaded")
	return artifacts, nil
}

func (s *Store) writeFile(name string, v interface{}) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

func (s *Store) readFile(name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := msgpack.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
