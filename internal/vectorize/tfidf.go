// Package vectorize converts normalized symptom text into TF-IDF weighted
// feature vectors over a vocabulary fixed at training time.
package vectorize

import (
	"errors"
	"math"
	"sort"
	"strings"
)

var (
	// ErrNotFitted indicates Transform was called before Fit.
	ErrNotFitted = errors.New("vectorize: vectorizer is not fitted")
	// ErrEmptyVocabulary indicates the corpus produced no usable terms.
	ErrEmptyVocabulary = errors.New("vectorize: empty vocabulary")
)

// Config holds vocabulary construction parameters.
type Config struct {
	MaxFeatures    int     `msgpack:"max_features"`
	NGramMin       int     `msgpack:"ngram_min"`
	NGramMax       int     `msgpack:"ngram_max"`
	MinDocFreq     int     `msgpack:"min_doc_freq"`
	MaxDocFreqFrac float64 `msgpack:"max_doc_freq_frac"`
}

// DefaultConfig returns the standard vectorizer configuration: unigrams
// and bigrams, vocabulary capped at 5000 terms, terms in more than 95% of
// documents excluded.
func DefaultConfig() Config {
	return Config{
		MaxFeatures:    5000,
		NGramMin:       1,
		NGramMax:       2,
		MinDocFreq:     1,
		MaxDocFreqFrac: 0.95,
	}
}

// FeatureSpace is the fitted vocabulary plus inverse document frequencies.
// It is owned by the trained artifact and read-only at inference time.
type FeatureSpace struct {
	Terms      []string       `msgpack:"terms"` // index -> term
	Vocabulary map[string]int `msgpack:"vocabulary"`
	IDF        []float64      `msgpack:"idf"`
	Documents  int            `msgpack:"documents"`
	Config     Config         `msgpack:"config"`
}

// Dimension returns the feature vector length.
func (s *FeatureSpace) Dimension() int {
	return len(s.Terms)
}

// Vectorizer builds and applies a FeatureSpace.
type Vectorizer struct {
	cfg   Config
	space *FeatureSpace
}

// New creates an unfitted vectorizer with the given configuration.
func New(cfg Config) *Vectorizer {
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = DefaultConfig().MaxFeatures
	}
	if cfg.NGramMin <= 0 {
		cfg.NGramMin = 1
	}
	if cfg.NGramMax < cfg.NGramMin {
		cfg.NGramMax = cfg.NGramMin
	}
	if cfg.MinDocFreq <= 0 {
		cfg.MinDocFreq = 1
	}
	if cfg.MaxDocFreqFrac <= 0 || cfg.MaxDocFreqFrac > 1 {
		cfg.MaxDocFreqFrac = 1
	}
	return &Vectorizer{cfg: cfg}
}

// NewFromSpace creates a vectorizer around an already-fitted feature space,
// as loaded from a trained artifact.
func NewFromSpace(space *FeatureSpace) *Vectorizer {
	return &Vectorizer{cfg: space.Config, space: space}
}

// Space returns the fitted feature space, or nil before Fit.
func (v *Vectorizer) Space() *FeatureSpace {
	return v.space
}

// Fit builds the vocabulary and IDF table from the corpus. Given the same
// corpus and configuration the resulting FeatureSpace is identical: term
// selection breaks frequency ties lexicographically and the final
// vocabulary is ordered lexicographically.
func (v *Vectorizer) Fit(corpus []string) (*FeatureSpace, error) {
	nDocs := len(corpus)
	if nDocs == 0 {
		return nil, ErrEmptyVocabulary
	}

	docFreq := make(map[string]int)
	termFreq := make(map[string]int)
	for _, doc := range corpus {
		terms := v.extractTerms(doc)
		inDoc := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			termFreq[term]++
			inDoc[term] = struct{}{}
		}
		for term := range inDoc {
			docFreq[term]++
		}
	}

	maxDocCount := int(v.cfg.MaxDocFreqFrac * float64(nDocs))
	if maxDocCount < 1 {
		maxDocCount = 1
	}

	candidates := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if df < v.cfg.MinDocFreq || df > maxDocCount {
			continue
		}
		candidates = append(candidates, term)
	}
	if len(candidates) == 0 {
		return nil, ErrEmptyVocabulary
	}

	// Cap the vocabulary at the most frequent terms across the corpus.
	sort.Slice(candidates, func(i, j int) bool {
		if termFreq[candidates[i]] != termFreq[candidates[j]] {
			return termFreq[candidates[i]] > termFreq[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > v.cfg.MaxFeatures {
		candidates = candidates[:v.cfg.MaxFeatures]
	}
	sort.Strings(candidates)

	space := &FeatureSpace{
		Terms:      candidates,
		Vocabulary: make(map[string]int, len(candidates)),
		IDF:        make([]float64, len(candidates)),
		Documents:  nDocs,
		Config:     v.cfg,
	}
	for i, term := range candidates {
		space.Vocabulary[term] = i
		// Smoothed IDF: every term behaves as if seen in one extra document,
		// so IDF stays finite and positive.
		space.IDF[i] = math.Log(float64(1+nDocs)/float64(1+docFreq[term])) + 1
	}

	v.space = space
	return space, nil
}

// Transform produces the TF-IDF vector for a single normalized text.
// Tokens outside the fitted vocabulary contribute nothing.
func (v *Vectorizer) Transform(text string) ([]float64, error) {
	if v.space == nil {
		return nil, ErrNotFitted
	}

	vec := make([]float64, len(v.space.Terms))
	for _, term := range v.extractTerms(text) {
		if idx, ok := v.space.Vocabulary[term]; ok {
			vec[idx]++
		}
	}

	var norm float64
	for i := range vec {
		vec[i] *= v.space.IDF[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// TransformAll vectorizes a corpus row by row.
func (v *Vectorizer) TransformAll(corpus []string) ([][]float64, error) {
	out := make([][]float64, len(corpus))
	for i, doc := range corpus {
		vec, err := v.Transform(doc)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

// extractTerms tokenizes a document and expands it into the configured
// n-gram range. Stop words are removed before n-grams are formed.
func (v *Vectorizer) extractTerms(doc string) []string {
	var tokens []string
	for _, tok := range strings.Fields(doc) {
		if len(tok) < 2 || IsStopWord(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}

	var terms []string
	for n := v.cfg.NGramMin; n <= v.cfg.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
