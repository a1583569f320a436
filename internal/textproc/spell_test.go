package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpellCorrector_KnownWordsPassThrough(t *testing.T) {
	c := NewSpellCorrector()
	c.Train([]string{"fever cough headache"})

	assert.Equal(t, "fever", c.CorrectWord("fever"))
	assert.Equal(t, "cough", c.CorrectWord("cough"))
}

func TestSpellCorrector_SingleEditCorrection(t *testing.T) {
	c := NewSpellCorrector()
	c.Train([]string{"fever fatigue vomiting nausea"})

	tests := map[string]string{
		"fevr":     "fever",    // deletion in input
		"feverr":   "fever",    // insertion in input
		"fatigue":  "fatigue",  // already correct
		"nausae":   "nausea",   // transposition
		"vomitind": "vomiting", // replacement
	}
	for input, want := range tests {
		assert.Equal(t, want, c.CorrectWord(input), "input %q", input)
	}
}

func TestSpellCorrector_TrainSplitsOnPunctuation(t *testing.T) {
	c := NewSpellCorrector()
	c.Train([]string{"Fever, chills; (headache)"})

	assert.True(t, c.Known("fever"))
	assert.True(t, c.Known("chills"))
	assert.True(t, c.Known("headache"))
}

func TestSpellCorrector_FrequencyBreaksTies(t *testing.T) {
	c := NewSpellCorrector()
	// "cold" and "colt" are both one edit from "colx"; "cold" is more
	// frequent and must win.
	c.Learn("cold", 5)
	c.Learn("colt", 1)

	assert.Equal(t, "cold", c.CorrectWord("colx"))
}

func TestSpellCorrector_ShortAndUnknownWordsUnchanged(t *testing.T) {
	c := NewSpellCorrector()
	c.Train([]string{"fever"})

	assert.Equal(t, "flu", c.CorrectWord("flu"))
	assert.Equal(t, "xyzzyqq", c.CorrectWord("xyzzyqq"))
	assert.Equal(t, "covid19", c.CorrectWord("covid19"))
}

func TestSpellCorrector_EmptyLexiconIsNoop(t *testing.T) {
	c := NewSpellCorrector()

	got, err := c.Correct("anything at all")
	assert.NoError(t, err)
	assert.Equal(t, "anything at all", got)
}

func TestSpellCorrector_InvalidUTF8(t *testing.T) {
	c := NewSpellCorrector()
	c.Train([]string{"fever"})

	_, err := c.Correct("bad\xffinput")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSpellCorrector_LexiconRoundTrip(t *testing.T) {
	c := NewSpellCorrector()
	c.Train([]string{"fever fever cough"})

	clone := NewSpellCorrectorFromLexicon(c.Lexicon())
	assert.Equal(t, "fever", clone.CorrectWord("fevr"))
	assert.Equal(t, 2, clone.Lexicon()["fever"])
}
