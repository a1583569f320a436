package train

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/config"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/model"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
)

func writeCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// syntheticDataset builds a labeled CSV with varied rows per disease so
// deduplication keeps them all.
func syntheticDataset(t *testing.T, dir string, perClass int) string {
	t.Helper()
	base := map[string]string{
		"Influenza":      "fever chills headache body ache fatigue",
		"Migraine":       "severe headache nausea light sensitivity aura",
		"Food Poisoning": "vomiting diarrhea stomach cramps nausea",
		"Pneumonia":      "cough chest pain fever shortness breath",
		"Chickenpox":     "itchy rash blisters fever tiredness",
	}
	var b strings.Builder
	b.WriteString("Symptoms,Disease\n")
	for disease, symptoms := range base {
		for i := 0; i < perClass; i++ {
			fmt.Fprintf(&b, "%s onset day%d,%s\n", symptoms, i, disease)
		}
	}
	return writeCSV(t, dir, "decease.csv", b.String())
}

func testConfig(t *testing.T, datasetPath string) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	dir := t.TempDir()
	cfg.Paths.DatasetPath = datasetPath
	cfg.Paths.ModelsDir = filepath.Join(dir, "models")
	cfg.Paths.ReportPath = filepath.Join(dir, "models", "training_report.txt")
	return cfg
}

func TestLoadDataset(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "data.csv", strings.Join([]string{
		"Symptoms,Disease",
		"fever headache,Flu",
		"fever headache,Flu", // exact duplicate
		",Flu",               // missing symptoms
		"cough fever,",       // missing disease
		"itchy rash,Chickenpox",
		"",
	}, "\n"))

	records, err := LoadDataset(path, observability.NopLogger())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fever headache", records[0].RawSymptoms)
	assert.Equal(t, "Flu", records[0].DiseaseLabel)
	assert.Equal(t, "Chickenpox", records[1].DiseaseLabel)
}

func TestLoadDataset_MissingColumns(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "data.csv", "Symptoms,Condition\nfever,Flu\n")

	_, err := LoadDataset(path, observability.NopLogger())
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestLoadDataset_MissingFile(t *testing.T) {
	_, err := LoadDataset(filepath.Join(t.TempDir(), "absent.csv"), observability.NopLogger())
	assert.Error(t, err)
}

func TestLoadDataset_EmptyAfterFiltering(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "data.csv", "Symptoms,Disease\n,\n")

	_, err := LoadDataset(path, observability.NopLogger())
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestTrainer_Preprocess(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "data.csv", strings.Join([]string{
		"Symptoms,Disease",
		`"['Fever', 'Headache']",Flu`,
		`"[]",Mystery`, // normalizes to empty, dropped
		"itchy rash; blisters,Chickenpox",
	}, "\n"))
	cfg := testConfig(t, path)

	trainer := NewTrainer(cfg, observability.NopLogger())
	require.True(t, trainer.LoadAndValidate())
	require.NoError(t, trainer.Preprocess())

	require.Len(t, trainer.rows, 2)
	assert.Equal(t, "fever headache", trainer.rows[0].CleanedText)
	assert.Equal(t, "itchy rash blisters", trainer.rows[1].CleanedText)
	assert.Equal(t, 2, trainer.encoder.Len())
}

func TestTrainer_ProgressCallback(t *testing.T) {
	dir := t.TempDir()
	path := syntheticDataset(t, dir, 3)
	cfg := testConfig(t, path)

	trainer := NewTrainer(cfg, observability.NopLogger())
	require.True(t, trainer.LoadAndValidate())

	var calls, lastTotal int
	trainer.Progress = func(done, total int) {
		calls++
		lastTotal = total
	}
	require.NoError(t, trainer.Preprocess())
	assert.Equal(t, 15, calls)
	assert.Equal(t, 15, lastTotal)
}

func TestTrainer_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	path := syntheticDataset(t, dir, 8)
	cfg := testConfig(t, path)

	trainer := NewTrainer(cfg, observability.NopLogger())
	require.NoError(t, trainer.Run())

	report := trainer.Report()
	require.NotNil(t, report)
	assert.Greater(t, report.Accuracy, cfg.Training.AccuracyFloor)
	assert.Equal(t, 5, report.DiseaseCount)
	assert.Equal(t, 40, report.TrainingSamples+report.TestSamples)

	// Artifacts round trip through the store and still predict.
	store := model.NewStore(cfg.Paths.ModelsDir, observability.NopLogger())
	artifacts, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, artifacts.Metadata)
	assert.Equal(t, "multinomial_naive_bayes", artifacts.Metadata.ModelType)
	assert.Len(t, artifacts.Metadata.DiseaseClasses, 5)

	// Report file was written.
	data, err := os.ReadFile(cfg.Paths.ReportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "accuracy")
}

func TestTrainer_SplitIsSeededAndLeakFree(t *testing.T) {
	dir := t.TempDir()
	path := syntheticDataset(t, dir, 8)
	cfg := testConfig(t, path)

	trainer := NewTrainer(cfg, observability.NopLogger())
	require.True(t, trainer.LoadAndValidate())
	require.NoError(t, trainer.Preprocess())

	trainA, testA := trainer.split()
	trainB, testB := trainer.split()
	assert.Equal(t, trainA, trainB)
	assert.Equal(t, testA, testB)
	assert.Equal(t, 8, len(testA))
	assert.Equal(t, 32, len(trainA))

	_, err := trainer.Train()
	require.NoError(t, err)

	// The fitted vocabulary saw only the training split.
	assert.Equal(t, len(trainA), trainer.vectorizer.Space().Documents)
}

func TestTrainer_VocabularyIgnoresTestSplit(t *testing.T) {
	dir := t.TempDir()
	path := syntheticDataset(t, dir, 8)
	cfg := testConfig(t, path)

	baseline := NewTrainer(cfg, observability.NopLogger())
	require.True(t, baseline.LoadAndValidate())
	require.NoError(t, baseline.Preprocess())
	_, err := baseline.Train()
	require.NoError(t, err)

	perturbed := NewTrainer(cfg, observability.NopLogger())
	require.True(t, perturbed.LoadAndValidate())
	require.NoError(t, perturbed.Preprocess())

	// Rewrite only the rows that will land in the held-out split. The
	// split is seeded, so it selects the same row indices on retrain.
	_, testRows := perturbed.split()
	testTexts := make(map[string]struct{}, len(testRows))
	for _, r := range testRows {
		testTexts[r.CleanedText] = struct{}{}
	}
	for i := range perturbed.rows {
		if _, ok := testTexts[perturbed.rows[i].CleanedText]; ok {
			perturbed.rows[i].CleanedText += " zzperturbation"
		}
	}
	_, err = perturbed.Train()
	require.NoError(t, err)

	assert.Equal(t, baseline.vectorizer.Space().Terms, perturbed.vectorizer.Space().Terms)
	assert.Equal(t, baseline.vectorizer.Space().IDF, perturbed.vectorizer.Space().IDF)
}

func TestTrainer_ReportDatasetStats(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "data.csv", strings.Join([]string{
		"Symptoms,Disease",
		"fever chills body ache,Flu",
		"fever chills fatigue,Flu",
		"fever chills cough,Flu",
		"itchy rash blisters,Chickenpox",
		"itchy rash fever,Chickenpox",
		"severe headache aura,Migraine",
	}, "\n"))
	cfg := testConfig(t, path)

	trainer := NewTrainer(cfg, observability.NopLogger())
	require.True(t, trainer.LoadAndValidate())
	require.NoError(t, trainer.Preprocess())
	_, err := trainer.Train()
	require.NoError(t, err)

	report := trainer.Report()
	require.NotNil(t, report)
	// 19 tokens across 6 rows.
	assert.InDelta(t, 19.0/6.0, report.AvgSymptomTokens, 1e-9)
	require.Len(t, report.TopDiseases, 3)
	assert.Equal(t, LabelCount{Label: "Flu", Count: 3}, report.TopDiseases[0])
	assert.Equal(t, LabelCount{Label: "Chickenpox", Count: 2}, report.TopDiseases[1])
	assert.Equal(t, LabelCount{Label: "Migraine", Count: 1}, report.TopDiseases[2])

	text := report.String()
	assert.Contains(t, text, "most frequent diseases")
	assert.Contains(t, text, "Flu")
}

func TestTrainer_CrossValidationSkippedOnSparseClasses(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, "data.csv", strings.Join([]string{
		"Symptoms,Disease",
		"fever chills body ache,Flu",
		"fever chills fatigue,Flu",
		"itchy rash blisters,Chickenpox",
		"itchy rash fever,Chickenpox",
	}, "\n"))
	cfg := testConfig(t, path)

	trainer := NewTrainer(cfg, observability.NopLogger())
	require.True(t, trainer.LoadAndValidate())
	require.NoError(t, trainer.Preprocess())
	_, err := trainer.Train()
	require.NoError(t, err)

	report := trainer.Report()
	require.NotNil(t, report)
	assert.True(t, report.CVSkipped)
	assert.Empty(t, report.CVScores)
}

func TestTrainer_SaveRefusedBelowAccuracyFloor(t *testing.T) {
	dir := t.TempDir()
	path := syntheticDataset(t, dir, 8)
	cfg := testConfig(t, path)
	cfg.Training.AccuracyFloor = 1.1 // unreachable

	trainer := NewTrainer(cfg, observability.NopLogger())
	require.True(t, trainer.LoadAndValidate())
	require.NoError(t, trainer.Preprocess())
	_, err := trainer.Train()
	require.NoError(t, err)

	assert.False(t, trainer.Save())
	_, err = model.NewStore(cfg.Paths.ModelsDir, observability.NopLogger()).Load()
	assert.ErrorIs(t, err, model.ErrModelsNotFound)
}

func TestTrainer_SaveBeforeTrain(t *testing.T) {
	cfg := testConfig(t, "absent.csv")
	trainer := NewTrainer(cfg, observability.NopLogger())
	assert.False(t, trainer.Save())
	assert.ErrorIs(t, trainer.GenerateReport(), ErrNotTrained)
}
