package textproc

import (
	"errors"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidInput indicates text the corrector cannot process.
var ErrInvalidInput = errors.New("textproc: invalid input text")

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// Words shorter than this are left alone; single-edit candidates for very
// short words are mostly noise.
const minCorrectionLength = 4

// SpellCorrector corrects misspelled symptom terms against a lexicon of
// known terms with observed frequencies.
type SpellCorrector struct {
	freq map[string]int
}

// NewSpellCorrector creates an empty corrector.
func NewSpellCorrector() *SpellCorrector {
	return &SpellCorrector{freq: make(map[string]int)}
}

// NewSpellCorrectorFromLexicon creates a corrector seeded with the given
// term frequencies.
func NewSpellCorrectorFromLexicon(lexicon map[string]int) *SpellCorrector {
	c := NewSpellCorrector()
	for term, count := range lexicon {
		c.Learn(term, count)
	}
	return c
}

// Learn adds a known term with the given observation count.
func (c *SpellCorrector) Learn(term string, count int) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || count <= 0 {
		return
	}
	c.freq[term] += count
}

// Train observes every alphabetic token in the given documents. Tokens
// are split on any non-letter rune so punctuation stuck to a word does
// not hide it from the lexicon.
func (c *SpellCorrector) Train(docs []string) {
	for _, doc := range docs {
		tokens := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		for _, tok := range tokens {
			if isAlphabetic(tok) {
				c.freq[tok]++
			}
		}
	}
}

// Lexicon returns a copy of the known term frequencies.
func (c *SpellCorrector) Lexicon() map[string]int {
	out := make(map[string]int, len(c.freq))
	for term, count := range c.freq {
		out[term] = count
	}
	return out
}

// Known reports whether the term is in the lexicon.
func (c *SpellCorrector) Known(term string) bool {
	_, ok := c.freq[term]
	return ok
}

// Correct runs word-by-word correction over a cleaned, lower-case text.
// Known words and words with no known single-edit candidate pass through
// unchanged, which keeps correction idempotent.
func (c *SpellCorrector) Correct(text string) (string, error) {
	if !utf8.ValidString(text) {
		return "", ErrInvalidInput
	}
	if len(c.freq) == 0 {
		return text, nil
	}

	words := strings.Fields(text)
	for i, word := range words {
		words[i] = c.CorrectWord(word)
	}
	return strings.Join(words, " "), nil
}

// CorrectWord corrects a single word, or returns it unchanged when it is
// known, too short, or non-alphabetic.
func (c *SpellCorrector) CorrectWord(word string) string {
	if len(word) < minCorrectionLength || !isAlphabetic(word) {
		return word
	}
	if c.Known(word) {
		return word
	}

	candidates := c.knownEdits(word)
	if len(candidates) == 0 {
		return word
	}

	// Highest observed frequency wins; lexicographic order breaks ties so
	// correction is deterministic.
	sort.Strings(candidates)
	best := candidates[0]
	for _, cand := range candidates[1:] {
		if c.freq[cand] > c.freq[best] {
			best = cand
		}
	}
	return best
}

// knownEdits returns the lexicon members within one edit of the word.
func (c *SpellCorrector) knownEdits(word string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(cand string) {
		if cand == "" || cand == word {
			return
		}
		if _, dup := seen[cand]; dup {
			return
		}
		seen[cand] = struct{}{}
		if c.Known(cand) {
			out = append(out, cand)
		}
	}

	for i := 0; i <= len(word); i++ {
		head, tail := word[:i], word[i:]

		// deletes
		if len(tail) > 0 {
			add(head + tail[1:])
		}
		// transposes
		if len(tail) > 1 {
			add(head + string(tail[1]) + string(tail[0]) + tail[2:])
		}
		for _, ch := range alphabet {
			// replaces
			if len(tail) > 0 {
				add(head + string(ch) + tail[1:])
			}
			// inserts
			add(head + string(ch) + tail)
		}
	}
	return out
}

func isAlphabetic(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
