package model

// Tier brackets, highest first. Labels are display-only; the numeric rating
// stays the source of truth.
var tiers = []struct {
	min   float64
	label string
}{
	{140, "Grossmeister"},
	{120, "Jassmeister"},
	{105, "Stammspieler"},
	{95, "Geselle"},
	{80, "Lehrling"},
}

// TierFor maps a rating to its display bracket.
func TierFor(rating float64) string {
	for _, t := range tiers {
		if rating >= t.min {
			return t.label
		}
	}
	return "Anfänger"
}
