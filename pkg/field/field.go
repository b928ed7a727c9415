// Package field separates staging-level defaulting from fact-level absence.
//
// Staging tables substitute the literal "unavailable" for missing metadata so
// analysts never join against empty strings. Fact tables must keep true NULLs.
// Keeping the two as distinct types stops the staging sentinel from leaking
// into fact columns.
package field

import "strings"

// Unavailable is the staging substitute for a missing textual value.
const Unavailable = "unavailable"

// Staging is a textual staging value: either a real value or Unavailable.
type Staging string

// StagingText trims s and returns it as a Staging value, substituting
// Unavailable when nothing remains.
func StagingText(s string) Staging {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Unavailable
	}
	return Staging(trimmed)
}

func (s Staging) String() string { return string(s) }

// Known reports whether the value is a real one rather than the substitute.
func (s Staging) Known() bool { return s != Unavailable && s != "" }

// Fact converts a staging value to its fact-level representation. The
// Unavailable substitute becomes a true absence.
func (s Staging) Fact() Fact[string] {
	if !s.Known() {
		return None[string]()
	}
	return Some(string(s))
}

// Fact is a fact-level optional value. There is no sentinel: an absent value
// stays absent all the way to a NULL column.
type Fact[T any] struct {
	value   T
	present bool
}

// Some wraps a present value.
func Some[T any](v T) Fact[T] {
	return Fact[T]{value: v, present: true}
}

// None is the absent value.
func None[T any]() Fact[T] {
	return Fact[T]{}
}

// Get returns the value and whether it is present.
func (f Fact[T]) Get() (T, bool) {
	return f.value, f.present
}

// Present reports whether a value is set.
func (f Fact[T]) Present() bool { return f.present }

// MustGet returns the value, or the zero value when absent. Callers that need
// to distinguish absence should use Get.
func (f Fact[T]) MustGet() T { return f.value }
