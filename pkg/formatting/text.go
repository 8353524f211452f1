package formatting

import (
	"math"
	"strconv"
)

// FormatPercent renders a fraction in [0,1] as a percentage with the given
// number of decimals, e.g. FormatPercent(0.9345, 2) = "93.45%".
func FormatPercent(fraction float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(fraction*100, 'f', decimals, 64) + "%"
}

// Share returns part/total as a percentage rounded half away from zero to
// one decimal place. A zero total yields 0.
func Share(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}

// Truncate shortens s to at most limit runes followed by "..." when it is
// longer than limit. Shorter strings are returned unchanged.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
