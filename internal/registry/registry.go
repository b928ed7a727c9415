// Package registry holds the read-only lookup tables the validator checks
// join keys against. Lookups are built once per run from reference staging
// and injected explicitly; nothing in this package is ambient state.
package registry

import "strings"

// Set is an immutable membership set over trimmed identifiers.
type Set map[string]struct{}

// NewSet builds a Set from values, trimming whitespace and skipping empties.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		s[trimmed] = struct{}{}
	}
	return s
}

// Contains reports membership of v.
func (s Set) Contains(v string) bool {
	_, ok := s[v]
	return ok
}

// Values returns the members in unspecified order.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	return out
}

// Lookups bundles the reference sets a validation pass needs. Consumers only
// read from it, so one value may be shared across rows processed in parallel.
type Lookups struct {
	Elements Set
	Scales   Set
	Domains  Set
}

// SupportedScales are the rating scales the warehouse currently models.
var SupportedScales = []string{"IM", "LV"}

// Domains are the three rated occupational-element domains.
var Domains = []string{"SKILL", "KNOWLEDGE", "ABILITY"}

// New builds Lookups with the fixed scale and domain sets and the supplied
// element identifiers.
func New(elements []string) Lookups {
	return Lookups{
		Elements: NewSet(elements...),
		Scales:   NewSet(SupportedScales...),
		Domains:  NewSet(Domains...),
	}
}
