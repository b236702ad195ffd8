package message

import (
	"math"
	"regexp"
	"strconv"
)

var numericNoise = regexp.MustCompile(`[^0-9.]+`)

// Surprise compares an actual value against a baseline (forecast or
// previous). Unit suffixes, percent signs and thousand separators are
// stripped before parsing; a value with nothing parseable left counts as
// absent, not as an error. The delta is rounded to 3 decimal places and a
// zero delta is not a surprise.
func Surprise(actual, baseline string) (bool, float64) {
	a, ok := parseValue(actual)
	if !ok {
		return false, 0
	}
	b, ok := parseValue(baseline)
	if !ok {
		return false, 0
	}
	diff := math.Round((a-b)*1000) / 1000
	return diff != 0, diff
}

func parseValue(v string) (float64, bool) {
	cleaned := numericNoise.ReplaceAllString(v, "")
	if cleaned == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func formatDelta(d float64) string {
	return strconv.FormatFloat(d, 'f', -1, 64)
}
