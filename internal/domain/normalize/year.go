package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	minYear = 1990
	maxYear = 2100
)

var (
	separators   = strings.NewReplacer(".", "", ",", "")
	zeroFraction = regexp.MustCompile(`^(\d+)[.,]0+$`)
)

// SanitizeYear parses a year cell. Thousands separators are dropped, 0-99
// reads as 2000-2099 and anything outside [1990, 2100] is rejected.
func SanitizeYear(v any) (int, bool) {
	var s string
	switch val := v.(type) {
	case nil:
		return 0, false
	case int:
		s = strconv.Itoa(val)
	case int64:
		s = strconv.FormatInt(val, 10)
	case float64:
		s = strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		s = val
	default:
		return 0, false
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if y, ok := yearFromDigits(separators.Replace(s)); ok {
		return y, true
	}
	// "2026.0" is a decimal rendering, not a thousands separator.
	if m := zeroFraction.FindStringSubmatch(s); m != nil {
		return yearFromDigits(m[1])
	}
	return 0, false
}

func yearFromDigits(digits string) (int, bool) {
	if digits == "" {
		return 0, false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	if n >= 0 && n <= 99 {
		return 2000 + n, true
	}
	if n >= minYear && n <= maxYear {
		return n, true
	}
	return 0, false
}
