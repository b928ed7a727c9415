package transform

import (
	"math"
	"strconv"
	"strings"

	"onetl/pkg/field"
)

// parseNumber coerces raw text to a float64 or to an explicit absence. There
// is no imputation: empty input, NaN spellings, and unparsable text all come
// back absent rather than as zero or a sentinel.
func parseNumber(s string) field.Fact[float64] {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "nan") {
		return field.None[float64]()
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return field.None[float64]()
	}
	return field.Some(v)
}

// formatNumber renders a fact-level float back to its shortest text form.
// Used when persisting staging rows and when echoing normalized rows.
func formatNumber(f field.Fact[float64]) string {
	v, ok := f.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
