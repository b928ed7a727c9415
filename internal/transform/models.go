// Package transform turns loosely-typed O*NET extract records into
// normalized staging rows plus a quarantine stream of rejected rows. It is a
// pure mapping over in-memory batches: no I/O, no retained state, and a
// malformed row never aborts the rest of its batch.
package transform

import "onetl/pkg/field"

// Domain identifies which rated occupational-element file a row came from.
// It is attached by the caller based on the source file, never parsed from
// the row itself.
type Domain string

const (
	DomainSkill     Domain = "SKILL"
	DomainKnowledge Domain = "KNOWLEDGE"
	DomainAbility   Domain = "ABILITY"
)

// Reason is the machine-readable code attached to a quarantined row.
type Reason string

const (
	ReasonInvalidSOCFormat Reason = "invalid_soc_format"
	ReasonMissingElementID Reason = "missing_element_id"
	ReasonInvalidScaleID   Reason = "invalid_scale_id"
	ReasonInvalidDataValue Reason = "invalid_numeric_data_value"
)

// Reasons lists every quarantine reason in check order.
var Reasons = []Reason{
	ReasonInvalidSOCFormat,
	ReasonMissingElementID,
	ReasonInvalidScaleID,
	ReasonInvalidDataValue,
}

// RawOccupation is an occupation master record as extracted: untyped and
// untrusted.
type RawOccupation struct {
	OnetsocCode string
	Title       string
	Description string
}

// RawSkaRecord is a Skills/Knowledge/Abilities rating row as extracted, every
// field still text.
type RawSkaRecord struct {
	OnetsocCode       string
	ElementID         string
	ScaleID           string
	DataValue         string
	N                 string
	StandardError     string
	LowerCIBound      string
	UpperCIBound      string
	RecommendSuppress string
	NotRelevant       string
	DateUpdated       string
	DomainSource      string
}

// NormalizedOccupation is a trimmed, deduplicated occupation row ready for
// staging upsert.
type NormalizedOccupation struct {
	OnetsocCode    string
	Title          string
	Description    field.Staging
	MajorGroupCode field.Staging
}

// NormalizedSkaRow is a rating row whose keys passed validation and whose
// numeric fields are either properly typed or absent. Absence is never
// encoded as zero or a negative sentinel.
type NormalizedSkaRow struct {
	Domain            Domain
	OnetsocCode       string
	ElementID         string
	ScaleID           string
	DataValue         float64
	N                 field.Fact[float64]
	StandardError     field.Fact[float64]
	LowerCIBound      field.Fact[float64]
	UpperCIBound      field.Fact[float64]
	RecommendSuppress field.Staging
	NotRelevant       field.Staging
	DateUpdated       field.Staging
	DomainSource      field.Staging
}

// InvalidSkaRow carries a rejected record with its original field values
// untouched, for diagnosis. It is never joined to anything.
type InvalidSkaRow struct {
	Domain Domain
	Record RawSkaRecord
	Reason Reason
}
