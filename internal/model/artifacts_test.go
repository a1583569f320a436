package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/classify"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/vectorize"
)

func trainedArtifacts(t *testing.T) *Artifacts {
	t.Helper()

	corpus := []string{
		"fever headache body ache",
		"cough shortness breath",
		"stomach pain nausea",
	}
	labels := []string{"Flu", "Pneumonia", "Gastritis"}

	vec := vectorize.New(vectorize.DefaultConfig())
	space, err := vec.Fit(corpus)
	require.NoError(t, err)

	X, err := vec.TransformAll(corpus)
	require.NoError(t, err)

	nb := classify.NewNaiveBayes(0.1)
	require.NoError(t, nb.Fit(X, labels))

	enc := classify.NewLabelEncoder()
	enc.Fit(labels)

	return &Artifacts{
		Classifier: nb,
		Space:      space,
		Encoder:    enc,
		Metadata: &Metadata{
			ModelType:       "MultinomialNB",
			VectorizerType:  "TfidfVectorizer",
			FeatureCount:    space.Dimension(),
			DiseaseClasses:  enc.Classes,
			TrainingSamples: len(corpus),
			TrainedAt:       time.Now().UTC(),
		},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, observability.NopLogger())

	want := trainedArtifacts(t)
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, want.Classifier.Classes, got.Classifier.Classes)
	assert.Equal(t, want.Classifier.FeatureLogProb, got.Classifier.FeatureLogProb)
	assert.Equal(t, want.Space.Terms, got.Space.Terms)
	assert.Equal(t, want.Space.IDF, got.Space.IDF)
	assert.Equal(t, want.Encoder.Classes, got.Encoder.Classes)
	assert.Equal(t, want.Metadata.DiseaseClasses, got.Metadata.DiseaseClasses)
	assert.Equal(t, want.Metadata.TrainingSamples, got.Metadata.TrainingSamples)

	// The loaded model must produce identical predictions.
	reloaded := vectorize.NewFromSpace(got.Space)
	x, err := reloaded.Transform("fever headache")
	require.NoError(t, err)
	label, err := got.Classifier.Predict(x)
	require.NoError(t, err)
	assert.Equal(t, "Flu", label)
}

func TestStore_LoadMissingMandatoryArtifacts(t *testing.T) {
	store := NewStore(t.TempDir(), observability.NopLogger())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrModelsNotFound)
}

func TestStore_LoadWithoutOptionalArtifacts(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, observability.NopLogger())

	full := trainedArtifacts(t)
	require.NoError(t, store.Save(full))
	require.NoError(t, os.Remove(filepath.Join(dir, EncoderFile)))
	require.NoError(t, os.Remove(filepath.Join(dir, MetadataFile)))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, got.Encoder)
	assert.Nil(t, got.Metadata)
	assert.NotNil(t, got.Classifier)
	assert.NotNil(t, got.Space)
}

func TestStore_SaveIncompleteSet(t *testing.T) {
	store := NewStore(t.TempDir(), observability.NopLogger())

	assert.Error(t, store.Save(nil))
	assert.Error(t, store.Save(&Artifacts{}))
}

func TestStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, observability.NopLogger())
	require.NoError(t, store.Save(trainedArtifacts(t)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}
