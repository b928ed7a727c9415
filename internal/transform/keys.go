package transform

import (
	"regexp"

	"onetl/internal/registry"
)

// socPattern is the structural shape of an O*NET-SOC code, e.g. 11-1011.00.
// It is a fixed property of the source format, not configuration.
var socPattern = regexp.MustCompile(`^\d{2}-\d{4}\.\d{2}$`)

// ValidSOCCode reports whether code has the O*NET-SOC structural shape.
func ValidSOCCode(code string) bool {
	return socPattern.MatchString(code)
}

// validateKeys evaluates the three key predicates in their contractual order
// and returns the first failing reason. The ordering is a deliberate
// tie-break: a row failing several predicates is tagged with the earliest
// one only.
func validateKeys(r RawSkaRecord, lookups registry.Lookups) (Reason, bool) {
	if !ValidSOCCode(r.OnetsocCode) {
		return ReasonInvalidSOCFormat, false
	}
	// An absent element and an unknown element are the same failure here.
	if r.ElementID == "" || !lookups.Elements.Contains(r.ElementID) {
		return ReasonMissingElementID, false
	}
	if !lookups.Scales.Contains(r.ScaleID) {
		return ReasonInvalidScaleID, false
	}
	return "", true
}
