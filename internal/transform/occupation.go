package transform

import (
	"strings"

	"onetl/pkg/field"
)

// TransformOccupations cleans occupation master records: trims fields, drops
// rows without a code or title, deduplicates by code keeping the first
// occurrence, derives the two-digit major group code, and substitutes the
// staging marker for a missing description.
//
// There is deliberately no quarantine path here: a malformed code propagates
// with an "unavailable" major group and is left for the warehouse foreign
// key to catch at load time. Revisit if occupation extracts ever start
// arriving dirty enough to need per-row diagnostics.
func TransformOccupations(records []RawOccupation) []NormalizedOccupation {
	seen := make(map[string]struct{}, len(records))
	out := make([]NormalizedOccupation, 0, len(records))

	for _, r := range records {
		code := normalizeSpace(r.OnetsocCode)
		title := normalizeSpace(r.Title)
		if code == "" || title == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}

		out = append(out, NormalizedOccupation{
			OnetsocCode:    code,
			Title:          title,
			Description:    field.StagingText(normalizeSpace(r.Description)),
			MajorGroupCode: majorGroupCode(code),
		})
	}
	return out
}

// majorGroupCode derives the two-digit SOC major group from the characters
// before the hyphen.
func majorGroupCode(code string) field.Staging {
	prefix, _, found := strings.Cut(code, "-")
	if !found || prefix == "" {
		return field.Unavailable
	}
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return field.Staging(prefix)
}
