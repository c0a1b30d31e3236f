package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

var nonNumericPattern = regexp.MustCompile(`[^\d.]`)

// ParseTarget extracts a price from free text by dropping everything that is
// not a digit or a decimal point, so "₹2,500" parses as 2500. The second
// return value is false when nothing numeric remains or the remainder is
// not a valid number.
func ParseTarget(text string) (float64, bool) {
	cleaned := nonNumericPattern.ReplaceAllString(strings.TrimSpace(text), "")
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// HasTarget reports whether a prediction stated a target at all.
func HasTarget(text string) bool {
	return strings.TrimSpace(text) != ""
}
