// Package classify implements the multinomial naive Bayes disease
// classifier and its label encoding.
package classify

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrNotFitted indicates prediction was attempted before Fit.
var ErrNotFitted = errors.New("classify: model is not fitted")

// ScoredLabel pairs a class label with its probability.
type ScoredLabel struct {
	Label       string
	Probability float64
}

// NaiveBayes is a multinomial naive Bayes classifier over sparse
// non-negative term-weight features. Per-class term likelihoods use
// additive smoothing so unseen term/class combinations never collapse to
// zero probability.
type NaiveBayes struct {
	Alpha          float64     `msgpack:"alpha"`
	Classes        []string    `msgpack:"classes"`
	ClassLogPrior  []float64   `msgpack:"class_log_prior"`
	FeatureLogProb [][]float64 `msgpack:"feature_log_prob"`
	Features       int         `msgpack:"features"`
}

// NewNaiveBayes creates an unfitted classifier with the given smoothing
// strength.
func NewNaiveBayes(alpha float64) *NaiveBayes {
	if alpha <= 0 {
		alpha = 1e-10
	}
	return &NaiveBayes{Alpha: alpha}
}

// Fitted reports whether the model has been trained.
func (nb *NaiveBayes) Fitted() bool {
	return len(nb.Classes) > 0
}

// Fit estimates class priors and per-class term likelihoods. Classes are
// ordered by sorted label string; that order is the tie-break order for
// ranked predictions.
func (nb *NaiveBayes) Fit(X [][]float64, y []string) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("classify: bad training shape: %d rows, %d labels", len(X), len(y))
	}

	nFeatures := len(X[0])
	if nFeatures == 0 {
		return errors.New("classify: zero-width feature matrix")
	}

	enc := NewLabelEncoder()
	enc.Fit(y)
	nClasses := enc.Len()

	classCount := make([]float64, nClasses)
	featureCount := make([][]float64, nClasses)
	for c := range featureCount {
		featureCount[c] = make([]float64, nFeatures)
	}

	for i, row := range X {
		if len(row) != nFeatures {
			return fmt.Errorf("classify: row %d has %d features, want %d", i, len(row), nFeatures)
		}
		c, err := enc.Encode(y[i])
		if err != nil {
			return err
		}
		classCount[c]++
		for j, val := range row {
			featureCount[c][j] += val
		}
	}

	nb.Classes = enc.Classes
	nb.Features = nFeatures
	nb.ClassLogPrior = make([]float64, nClasses)
	nb.FeatureLogProb = make([][]float64, nClasses)

	total := float64(len(X))
	for c := 0; c < nClasses; c++ {
		nb.ClassLogPrior[c] = math.Log(classCount[c] / total)

		var classTotal float64
		for _, val := range featureCount[c] {
			classTotal += val
		}
		smoothedTotal := classTotal + nb.Alpha*float64(nFeatures)

		nb.FeatureLogProb[c] = make([]float64, nFeatures)
		for j, val := range featureCount[c] {
			nb.FeatureLogProb[c][j] = math.Log((val + nb.Alpha) / smoothedTotal)
		}
	}

	return nil
}

// PredictProba returns the probability distribution over all known
// classes, aligned with Classes. Probabilities sum to 1 within numeric
// tolerance.
func (nb *NaiveBayes) PredictProba(x []float64) ([]float64, error) {
	if !nb.Fitted() {
		return nil, ErrNotFitted
	}
	if len(x) != nb.Features {
		return nil, fmt.Errorf("classify: input has %d features, model expects %d", len(x), nb.Features)
	}

	jll := make([]float64, len(nb.Classes))
	for c := range nb.Classes {
		sum := nb.ClassLogPrior[c]
		for j, val := range x {
			if val != 0 {
				sum += val * nb.FeatureLogProb[c][j]
			}
		}
		jll[c] = sum
	}

	// log-sum-exp normalization keeps the softmax numerically stable.
	maxLL := jll[0]
	for _, ll := range jll[1:] {
		if ll > maxLL {
			maxLL = ll
		}
	}
	var denom float64
	for _, ll := range jll {
		denom += math.Exp(ll - maxLL)
	}
	logDenom := maxLL + math.Log(denom)

	probs := make([]float64, len(jll))
	for c, ll := range jll {
		probs[c] = math.Exp(ll - logDenom)
	}
	return probs, nil
}

// Predict returns the most probable class label.
func (nb *NaiveBayes) Predict(x []float64) (string, error) {
	ranked, err := nb.PredictTopK(x, 1)
	if err != nil {
		return "", err
	}
	return ranked[0].Label, nil
}

// PredictTopK returns the k most probable classes in non-increasing
// probability order. Ties keep the classifier's class order (stable sort).
// If fewer than k classes exist, all of them are returned.
func (nb *NaiveBayes) PredictTopK(x []float64, k int) ([]ScoredLabel, error) {
	probs, err := nb.PredictProba(x)
	if err != nil {
		return nil, err
	}

	ranked := make([]ScoredLabel, len(probs))
	for c, p := range probs {
		ranked[c] = ScoredLabel{Label: nb.Classes[c], Probability: p}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k], nil
}
