// Package formatting renders and parses human-readable values: byte sizes,
// percentages, truncated text, and JSON embedded in free-form responses.
package formatting

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n with base-1024 units at the given precision.
// Negative counts keep their sign and negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}
	precision = max(precision, 0)

	size := math.Abs(float64(n))
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if n < 0 {
		size = -size
	}
	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes parses a size such as "64KB", "1.5 MB" or "512" into bytes.
// Units are base-1024 and case-insensitive. "K", "M", "G" and the IEC forms
// "KiB", "MiB" are accepted as aliases. A bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if number == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	exp, err := unitExponent(unit)
	if err != nil {
		return 0, err
	}

	bytes := value * math.Pow(1024, float64(exp))
	if bytes >= math.MaxInt64 {
		return 0, fmt.Errorf("byte size overflows: %q", s)
	}
	return int64(bytes), nil
}

func unitExponent(unit string) (int, error) {
	u := strings.ToUpper(unit)
	if u == "" {
		return 0, nil
	}
	u = strings.Replace(u, "IB", "B", 1)
	if len(u) == 1 && u != "B" {
		u += "B"
	}
	idx := slices.Index(units, u)
	if idx == -1 {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}
	return idx, nil
}
