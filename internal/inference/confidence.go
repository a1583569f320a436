// Package inference serves disease predictions from trained artifacts.
package inference

// Level buckets a prediction probability into a human-readable
// confidence tier.
type Level string

// Confidence tiers, highest first.
const (
	LevelHigh    Level = "High"
	LevelMedium  Level = "Medium"
	LevelLow     Level = "Low"
	LevelVeryLow Level = "Very Low"
)

// Tier boundaries. Each boundary belongs to the tier above it.
const (
	highBar   = 0.8
	mediumBar = 0.6
	lowBar    = 0.4
)

// LevelFor maps a probability to its confidence tier.
func LevelFor(confidence float64) Level {
	switch {
	case confidence >= highBar:
		return LevelHigh
	case confidence >= mediumBar:
		return LevelMedium
	case confidence >= lowBar:
		return LevelLow
	default:
		return LevelVeryLow
	}
}
