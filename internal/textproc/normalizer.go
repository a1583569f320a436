// Package textproc provides symptom text normalization and best-effort
// spell correction.
package textproc

import (
	"regexp"
	"strings"

	"github.com/aniket-next/MedalyZe-AI-base-disease-and-medicine-recommendation/internal/observability"
)

var (
	listLiteralRegex = regexp.MustCompile(`[\[\]'"()]`)
	separatorRegex   = regexp.MustCompile(`[,;]+`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// Normalizer cleans raw symptom text into a canonical token string.
// Normalize is total: it always returns a string and never fails.
type Normalizer struct {
	logger    *observability.Logger
	corrector *SpellCorrector
}

// NewNormalizer creates a normalizer. The corrector is optional; when nil
// the spell-correction pass is skipped.
func NewNormalizer(logger *observability.Logger, corrector *SpellCorrector) *Normalizer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Normalizer{
		logger:    logger.WithComponent("normalizer"),
		corrector: corrector,
	}
}

// Normalize cleans the input into a lower-case, single-spaced token string.
// Symptom fields exported as list literals (e.g. `['fever', 'headache']`)
// degrade to plain space-separated tokens. Empty, missing, or
// whitespace-only input yields the empty string.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	cleaned := listLiteralRegex.ReplaceAllString(text, "")
	cleaned = separatorRegex.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRegex.ReplaceAllString(cleaned, " ")
	cleaned = strings.ToLower(strings.TrimSpace(cleaned))

	if cleaned == "" || n.corrector == nil {
		return cleaned
	}

	// Spell correction is a refinement pass. Any failure keeps the
	// pre-correction text; the caller never sees an error.
	corrected, err := n.corrector.Correct(cleaned)
	if err != nil {
		n.logger.Warn().Err(err).Str("text", truncate(cleaned, 30)).Msg("Spell correction failed")
		return cleaned
	}

	return corrected
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
