package train

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/classify"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/config"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/model"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/textproc"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/vectorize"
)

// ErrAccuracyFloor indicates held-out accuracy fell below the minimum
// required for artifacts to be saved.
var ErrAccuracyFloor = errors.New("train: model accuracy below acceptable floor")

// ErrNotTrained indicates Save or GenerateReport was called before a
// successful Train.
var ErrNotTrained = errors.New("train: model has not been trained")

// Trainer runs the full offline pipeline: load, preprocess, fit,
// evaluate, persist. Steps must be called in order; Run drives them all.
type Trainer struct {
	cfg    *config.Config
	logger *observability.Logger
	store  *model.Store

	// Progress, when set, is called after each preprocessed row so the
	// CLI can render a progress bar.
	Progress func(done, total int)

	records []TrainingRecord
	rows    []NormalizedRecord
	encoder *classify.LabelEncoder

	vectorizer *vectorize.Vectorizer
	classifier *classify.NaiveBayes
	corrector  *textproc.SpellCorrector
	report     *Report
}

// NewTrainer creates a trainer writing artifacts under the configured
// models directory.
func NewTrainer(cfg *config.Config, logger *observability.Logger) *Trainer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	logger = logger.WithComponent("trainer")
	return &Trainer{
		cfg:    cfg,
		logger: logger,
		store:  model.NewStore(cfg.Paths.ModelsDir, logger),
	}
}

// LoadAndValidate loads the training dataset. It reports success rather
// than returning an error so callers can bail out of the pipeline on a
// single boolean; the failure itself is logged.
func (t *Trainer) LoadAndValidate() bool {
	records, err := LoadDataset(t.cfg.Paths.DatasetPath, t.logger)
	if err != nil {
		t.logger.Error().Err(err).Str("path", t.cfg.Paths.DatasetPath).Msg("Failed to load training dataset")
		return false
	}
	t.records = records
	return true
}

// Preprocess normalizes every symptom description and fits the label
// encoder. The spell corrector is trained on the raw dataset first so
// normalization can correct against the dataset's own vocabulary. Rows
// whose text normalizes to empty are dropped.
func (t *Trainer) Preprocess() error {
	if len(t.records) == 0 {
		return fmt.Errorf("%w: no records loaded", ErrInvalidDataset)
	}

	corrector := textproc.NewSpellCorrector()
	raw := make([]string, len(t.records))
	for i, r := range t.records {
		raw[i] = r.RawSymptoms
	}
	corrector.Train(raw)
	t.corrector = corrector

	normalizer := textproc.NewNormalizer(t.logger, corrector)

	rows := make([]NormalizedRecord, 0, len(t.records))
	for i, r := range t.records {
		cleaned := normalizer.Normalize(r.RawSymptoms)
		if cleaned != "" {
			rows = append(rows, NormalizedRecord{
				CleanedText:  cleaned,
				DiseaseLabel: r.DiseaseLabel,
			})
		}
		if t.Progress != nil {
			t.Progress(i+1, len(t.records))
		}
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: all rows empty after normalization", ErrInvalidDataset)
	}

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = r.DiseaseLabel
	}
	encoder := classify.NewLabelEncoder()
	encoder.Fit(labels)
	for i := range rows {
		code, err := encoder.Encode(rows[i].DiseaseLabel)
		if err != nil {
			return err
		}
		rows[i].EncodedLabel = code
	}

	t.rows = rows
	t.encoder = encoder

	t.logger.Info().
		Int("rows", len(rows)).
		Int("dropped", len(t.records)-len(rows)).
		Int("diseases", encoder.Len()).
		Msg("Preprocessing complete")
	return nil
}

// Train splits the data, fits the vectorizer and classifier on the
// training portion only, and evaluates on the held-out portion. It
// returns held-out accuracy.
func (t *Trainer) Train() (float64, error) {
	if len(t.rows) == 0 {
		return 0, fmt.Errorf("%w: preprocess first", ErrInvalidDataset)
	}

	trainRows, testRows := t.split()

	trainTexts := make([]string, len(trainRows))
	trainLabels := make([]string, len(trainRows))
	for i, r := range trainRows {
		trainTexts[i] = r.CleanedText
		trainLabels[i] = r.DiseaseLabel
	}

	// The vocabulary is fitted on the training split alone so held-out
	// evaluation never leaks test documents into feature selection.
	vectorizer := vectorize.New(vectorize.Config{
		MaxFeatures:    t.cfg.Model.MaxFeatures,
		NGramMin:       t.cfg.Model.NGramMin,
		NGramMax:       t.cfg.Model.NGramMax,
		MinDocFreq:     t.cfg.Model.MinDocFreq,
		MaxDocFreqFrac: t.cfg.Model.MaxDocFreqFrac,
	})
	space, err := vectorizer.Fit(trainTexts)
	if err != nil {
		return 0, fmt.Errorf("fit vectorizer: %w", err)
	}

	trainX, err := vectorizer.TransformAll(trainTexts)
	if err != nil {
		return 0, fmt.Errorf("vectorize training set: %w", err)
	}

	classifier := classify.NewNaiveBayes(t.cfg.Model.SmoothingAlpha)
	if err := classifier.Fit(trainX, trainLabels); err != nil {
		return 0, fmt.Errorf("fit classifier: %w", err)
	}

	truth := make([]string, len(testRows))
	predicted := make([]string, len(testRows))
	correct := 0
	for i, r := range testRows {
		vec, err := vectorizer.Transform(r.CleanedText)
		if err != nil {
			return 0, fmt.Errorf("vectorize test row: %w", err)
		}
		label, err := classifier.Predict(vec)
		if err != nil {
			return 0, fmt.Errorf("predict test row: %w", err)
		}
		truth[i] = r.DiseaseLabel
		predicted[i] = label
		if label == r.DiseaseLabel {
			correct++
		}
	}
	accuracy := 0.0
	if len(testRows) > 0 {
		accuracy = float64(correct) / float64(len(testRows))
	}

	avgLen, topDiseases := datasetStats(t.rows, 10)
	report := &Report{
		TrainedAt:        time.Now().UTC(),
		TrainingSamples:  len(trainRows),
		TestSamples:      len(testRows),
		FeatureCount:     space.Dimension(),
		DiseaseCount:     t.encoder.Len(),
		AvgSymptomTokens: avgLen,
		TopDiseases:      topDiseases,
		Accuracy:         accuracy,
		PerClass:         classificationReport(truth, predicted),
	}
	t.crossValidate(trainX, trainLabels, report)

	t.vectorizer = vectorizer
	t.classifier = classifier
	t.report = report

	event := t.logger.Info().
		Float64("accuracy", accuracy).
		Int("train_samples", len(trainRows)).
		Int("test_samples", len(testRows)).
		Int("features", space.Dimension())
	if !report.CVSkipped {
		event = event.Float64("cv_mean_accuracy", report.CVMean())
	}
	event.Msg("Training complete")

	return accuracy, nil
}

// split shuffles rows with the configured seed and carves off the test
// fraction. The test set always has at least one row when more than one
// row exists.
func (t *Trainer) split() (trainRows, testRows []NormalizedRecord) {
	rng := rand.New(rand.NewSource(t.cfg.Training.Seed))
	perm := rng.Perm(len(t.rows))

	testN := int(math.Ceil(t.cfg.Training.TestFraction * float64(len(t.rows))))
	if testN >= len(t.rows) {
		testN = len(t.rows) - 1
	}
	if testN < 0 {
		testN = 0
	}

	for i, idx := range perm {
		if i < testN {
			testRows = append(testRows, t.rows[idx])
		} else {
			trainRows = append(trainRows, t.rows[idx])
		}
	}
	return trainRows, testRows
}

// crossValidate runs k-fold cross-validation over the already vectorized
// training split, capping folds at the rarest class count. Too little
// data skips cross-validation rather than failing the run.
func (t *Trainer) crossValidate(trainX [][]float64, trainLabels []string, report *Report) {
	classCounts := make(map[string]int)
	for _, label := range trainLabels {
		classCounts[label]++
	}
	minClass := len(trainLabels)
	for _, n := range classCounts {
		if n < minClass {
			minClass = n
		}
	}

	folds := t.cfg.Training.MaxCVFolds
	if minClass < folds {
		folds = minClass
	}
	if folds < 2 {
		report.CVSkipped = true
		report.CVSkipReason = fmt.Sprintf("rarest disease has %d training samples", minClass)
		t.logger.Warn().Int("min_class_count", minClass).Msg("Skipping cross-validation, not enough samples per class")
		return
	}

	rng := rand.New(rand.NewSource(t.cfg.Training.Seed))
	perm := rng.Perm(len(trainX))

	scores := make([]float64, 0, folds)
	for fold := 0; fold < folds; fold++ {
		var foldX, restX [][]float64
		var foldY, restY []string
		for i, idx := range perm {
			if i%folds == fold {
				foldX = append(foldX, trainX[idx])
				foldY = append(foldY, trainLabels[idx])
			} else {
				restX = append(restX, trainX[idx])
				restY = append(restY, trainLabels[idx])
			}
		}

		nb := classify.NewNaiveBayes(t.cfg.Model.SmoothingAlpha)
		if err := nb.Fit(restX, restY); err != nil {
			report.CVSkipped = true
			report.CVSkipReason = err.Error()
			t.logger.Warn().Err(err).Int("fold", fold).Msg("Cross-validation aborted")
			return
		}
		correct := 0
		for i, x := range foldX {
			label, err := nb.Predict(x)
			if err == nil && label == foldY[i] {
				correct++
			}
		}
		score := 0.0
		if len(foldX) > 0 {
			score = float64(correct) / float64(len(foldX))
		}
		scores = append(scores, score)
	}
	report.CVScores = scores
}

// Save persists the trained artifacts if held-out accuracy cleared the
// configured floor. Like LoadAndValidate it reports success as a
// boolean; failures are logged.
func (t *Trainer) Save() bool {
	if t.classifier == nil || t.report == nil {
		t.logger.Error().Err(ErrNotTrained).Msg("Save called before training")
		return false
	}
	if t.report.Accuracy <= t.cfg.Training.AccuracyFloor {
		t.logger.Error().
			Float64("accuracy", t.report.Accuracy).
			Float64("floor", t.cfg.Training.AccuracyFloor).
			Msg("Model accuracy too low, artifacts not saved")
		return false
	}

	artifacts := &model.Artifacts{
		Classifier: t.classifier,
		Space:      t.vectorizer.Space(),
		Encoder:    t.encoder,
		Metadata: &model.Metadata{
			ModelType:       "multinomial_naive_bayes",
			VectorizerType:  "tfidf",
			FeatureCount:    t.report.FeatureCount,
			DiseaseClasses:  t.classifier.Classes,
			TrainingSamples: t.report.TrainingSamples,
			TrainedAt:       t.report.TrainedAt,
		},
	}
	if err := t.store.Save(artifacts); err != nil {
		t.logger.Error().Err(err).Msg("Failed to save model artifacts")
		return false
	}
	return true
}

// Report returns the evaluation report from the last Train, or nil.
func (t *Trainer) Report() *Report {
	return t.report
}

// GenerateReport writes the plain-text training report to the
// configured path.
func (t *Trainer) GenerateReport() error {
	if t.report == nil {
		return ErrNotTrained
	}
	path := t.cfg.Paths.ReportPath
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(t.report.String()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	t.logger.Info().Str("path", path).Msg("Training report written")
	return nil
}

// Run executes the whole pipeline and fails if any stage does.
func (t *Trainer) Run() error {
	if !t.LoadAndValidate() {
		return fmt.Errorf("%w: dataset load failed", ErrInvalidDataset)
	}
	if err := t.Preprocess(); err != nil {
		return err
	}
	accuracy, err := t.Train()
	if err != nil {
		return err
	}
	if !t.Save() {
		return fmt.Errorf("%w: accuracy %.4f, floor %.4f", ErrAccuracyFloor, accuracy, t.cfg.Training.AccuracyFloor)
	}
	if err := t.GenerateReport(); err != nil {
		t.logger.Warn().Err(err).Msg("Failed to write training report")
	}
	return nil
}
