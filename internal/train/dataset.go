// Package train implements the offline training pipeline: dataset
// loading, preprocessing, model fitting, evaluation, and artifact
// persistence.
package train

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
)

// ErrInvalidDataset indicates the training data is missing required
// columns or otherwise unusable.
var ErrInvalidDataset = errors.New("train: invalid training dataset")

// Dataset column headers.
const (
	colSymptoms = "Symptoms"
	colDisease  = "Disease"
)

// TrainingRecord is one validated source row.
type TrainingRecord struct {
	RawSymptoms  string
	DiseaseLabel string
}

// NormalizedRecord is a training row after text normalization and label
// encoding.
type NormalizedRecord struct {
	CleanedText  string
	DiseaseLabel string
	EncodedLabel int
}

// LoadDataset reads the labeled symptom dataset. Rows missing either
// field are dropped and exact duplicates are removed, keeping first
// occurrence order.
func LoadDataset(path string, logger *observability.Logger) ([]TrainingRecord, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	logger = logger.WithComponent("dataset")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidDataset, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	symptomsIdx, okS := cols[colSymptoms]
	diseaseIdx, okD := cols[colDisease]
	if !okS || !okD {
		return nil, fmt.Errorf("%w: missing required columns %q and %q", ErrInvalidDataset, colSymptoms, colDisease)
	}

	var (
		total   int
		records []TrainingRecord
		seen    = make(map[string]struct{})
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", ErrInvalidDataset, err)
		}
		total++

		if symptomsIdx >= len(row) || diseaseIdx >= len(row) {
			continue
		}
		symptoms := strings.TrimSpace(row[symptomsIdx])
		disease := strings.TrimSpace(row[diseaseIdx])
		if symptoms == "" || disease == "" {
			continue
		}

		key := symptoms + "\x00" + disease
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		records = append(records, TrainingRecord{
			RawSymptoms:  symptoms,
			DiseaseLabel: disease,
		})
	}

	unique := make(map[string]struct{})
	for _, r := range records {
		unique[r.DiseaseLabel] = struct{}{}
	}

	logger.Info().
		Int("rows_read", total).
		Int("rows_kept", len(records)).
		Int("unique_diseases", len(unique)).
		Str("path", path).
		Msg("Dataset loaded")

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no usable rows", ErrInvalidDataset)
	}
	return records, nil
}
