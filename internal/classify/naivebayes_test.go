package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// toy feature matrix: dimension 0 = "fever-ish", dimension 1 = "rash-ish",
// dimension 2 = "stomach-ish".
var (
	toyX = [][]float64{
		{1, 0, 0},
		{0.9, 0, 0.1},
		{0, 1, 0},
		{0, 0.8, 0.2},
		{0, 0, 1},
		{0.1, 0, 0.9},
	}
	toyY = []string{"Flu", "Flu", "Measles", "Measles", "Gastritis", "Gastritis"}
)

func fitToyModel(t *testing.T) *NaiveBayes {
	t.Helper()
	nb := NewNaiveBayes(0.1)
	require.NoError(t, nb.Fit(toyX, toyY))
	return nb
}

func TestNaiveBayes_NotFitted(t *testing.T) {
	nb := NewNaiveBayes(0.1)

	_, err := nb.PredictProba([]float64{1, 0, 0})
	assert.ErrorIs(t, err, ErrNotFitted)

	_, err = nb.PredictTopK([]float64{1, 0, 0}, 3)
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestNaiveBayes_ClassesSorted(t *testing.T) {
	nb := fitToyModel(t)
	assert.Equal(t, []string{"Flu", "Gastritis", "Measles"}, nb.Classes)
}

func TestNaiveBayes_ProbabilitiesSumToOne(t *testing.T) {
	nb := fitToyModel(t)

	inputs := [][]float64{
		{1, 0, 0},
		{0.5, 0.5, 0},
		{0, 0, 0},
		{0.2, 0.3, 0.5},
	}
	for _, x := range inputs {
		probs, err := nb.PredictProba(x)
		require.NoError(t, err)

		var sum float64
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestNaiveBayes_PredictsDominantClass(t *testing.T) {
	nb := fitToyModel(t)

	tests := map[string][]float64{
		"Flu":       {1, 0, 0},
		"Measles":   {0, 1, 0},
		"Gastritis": {0, 0, 1},
	}
	for want, x := range tests {
		got, err := nb.Predict(x)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNaiveBayes_TopKOrderingAndBounds(t *testing.T) {
	nb := fitToyModel(t)

	ranked, err := nb.PredictTopK([]float64{0.7, 0.2, 0.1}, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Probability, ranked[i].Probability)
	}
	assert.Equal(t, "Flu", ranked[0].Label)
}

func TestNaiveBayes_TopKWithFewerClasses(t *testing.T) {
	nb := NewNaiveBayes(0.1)
	require.NoError(t, nb.Fit([][]float64{{1, 0}, {0, 1}}, []string{"A", "B"}))

	ranked, err := nb.PredictTopK([]float64{1, 0}, 3)
	require.NoError(t, err)
	assert.Len(t, ranked, 2)
}

func TestNaiveBayes_TieBreakIsStableByClassOrder(t *testing.T) {
	// Two perfectly symmetric classes: a zero vector gives equal
	// probabilities and the sorted class order must be preserved.
	nb := NewNaiveBayes(1.0)
	require.NoError(t, nb.Fit(
		[][]float64{{1, 0}, {0, 1}},
		[]string{"Zeta", "Alpha"},
	))

	ranked, err := nb.PredictTopK([]float64{0, 0}, 2)
	require.NoError(t, err)
	assert.InDelta(t, ranked[0].Probability, ranked[1].Probability, 1e-12)
	assert.Equal(t, "Alpha", ranked[0].Label)
	assert.Equal(t, "Zeta", ranked[1].Label)
}

func TestNaiveBayes_BadShapes(t *testing.T) {
	nb := NewNaiveBayes(0.1)

	assert.Error(t, nb.Fit(nil, nil))
	assert.Error(t, nb.Fit([][]float64{{1}}, []string{"A", "B"}))
	assert.Error(t, nb.Fit([][]float64{{}}, []string{"A"}))

	require.NoError(t, nb.Fit([][]float64{{1, 0}, {0, 1}}, []string{"A", "B"}))
	_, err := nb.PredictProba([]float64{1})
	assert.Error(t, err)
}

func TestLabelEncoder_RoundTrip(t *testing.T) {
	enc := NewLabelEncoder()
	enc.Fit([]string{"Pneumonia", "Flu", "Asthma", "Flu"})

	assert.Equal(t, []string{"Asthma", "Flu", "Pneumonia"}, enc.Classes)
	assert.Equal(t, 3, enc.Len())

	code, err := enc.Encode("Flu")
	require.NoError(t, err)
	label, err := enc.Decode(code)
	require.NoError(t, err)
	assert.Equal(t, "Flu", label)

	_, err = enc.Encode("Unknown")
	assert.Error(t, err)
	_, err = enc.Decode(99)
	assert.Error(t, err)
}

func TestLabelEncoder_FromClasses(t *testing.T) {
	enc := NewLabelEncoderFromClasses([]string{"A", "B"})
	code, err := enc.Encode("B")
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}
