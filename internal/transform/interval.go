package transform

import "onetl/pkg/field"

// repairInterval swaps inverted confidence bounds when both are present.
// Inversion is a known source artifact, so this is a silent repair rather
// than a rejection; the returned flag lets callers count it.
func repairInterval(lower, upper field.Fact[float64]) (field.Fact[float64], field.Fact[float64], bool) {
	lo, lok := lower.Get()
	hi, hok := upper.Get()
	if lok && hok && lo > hi {
		return upper, lower, true
	}
	return lower, upper, false
}
