package transform

import (
	"onetl/internal/registry"
	"onetl/internal/transform/metrics"
	"onetl/pkg/field"
)

// SkaTransformer runs the per-row pipeline for one batch of rating records:
// field normalization, key validation, numeric coercion, interval repair,
// and the valid/quarantine partition.
type SkaTransformer struct {
	lookups registry.Lookups
	metrics *metrics.Metrics
}

// Stats summarizes the silent work a Transform call did.
type Stats struct {
	Repairs int
}

// NewSkaTransformer builds a transformer against the supplied lookups.
// The lookups are read-only for the lifetime of the transformer.
func NewSkaTransformer(lookups registry.Lookups, m *metrics.Metrics) *SkaTransformer {
	return &SkaTransformer{lookups: lookups, metrics: m}
}

// Transform partitions records into normalized output and quarantine. The
// partition is stable: rows keep their input order within each stream, and
// every input row lands in exactly one of the two.
func (t *SkaTransformer) Transform(domain Domain, records []RawSkaRecord) ([]NormalizedSkaRow, []InvalidSkaRow, Stats) {
	valid := make([]NormalizedSkaRow, 0, len(records))
	invalid := make([]InvalidSkaRow, 0)
	var stats Stats

	for _, r := range records {
		t.metrics.ObserveRow(string(domain))
		row, reason, repaired := t.transformRow(domain, r)
		if reason != "" {
			// Quarantine carries the original field values verbatim so the
			// rejection can be diagnosed against what was actually extracted.
			invalid = append(invalid, InvalidSkaRow{Domain: domain, Record: r, Reason: reason})
			t.metrics.ObserveQuarantine(string(domain), string(reason))
			continue
		}
		if repaired {
			stats.Repairs++
			t.metrics.ObserveRepair()
		}
		valid = append(valid, row)
	}
	return valid, invalid, stats
}

// transformRow normalizes and validates a single record. A non-empty reason
// means the row belongs in quarantine; repaired reports an interval swap.
func (t *SkaTransformer) transformRow(domain Domain, raw RawSkaRecord) (NormalizedSkaRow, Reason, bool) {
	r := normalizeRecord(raw)

	if reason, ok := validateKeys(r, t.lookups); !ok {
		return NormalizedSkaRow{}, reason, false
	}

	// data_value is the one mandatory numeric field; everything else may be
	// absent without consequence.
	dataValue, ok := parseNumber(r.DataValue).Get()
	if !ok {
		return NormalizedSkaRow{}, ReasonInvalidDataValue, false
	}

	lower, upper, repaired := repairInterval(parseNumber(r.LowerCIBound), parseNumber(r.UpperCIBound))

	row := NormalizedSkaRow{
		Domain:            domain,
		OnetsocCode:       r.OnetsocCode,
		ElementID:         r.ElementID,
		ScaleID:           r.ScaleID,
		DataValue:         dataValue,
		N:                 parseNumber(r.N),
		StandardError:     parseNumber(r.StandardError),
		LowerCIBound:      lower,
		UpperCIBound:      upper,
		RecommendSuppress: normalizeFlag(r.RecommendSuppress),
		NotRelevant:       normalizeFlag(r.NotRelevant),
		DateUpdated:       normalizeDate(r.DateUpdated),
		DomainSource:      field.StagingText(r.DomainSource),
	}
	return row, "", repaired
}

// Raw renders a normalized row back to its textual record form. Feeding the
// result through Transform again reproduces the row unchanged, which keeps
// the pipeline idempotent over its own output.
func (r NormalizedSkaRow) Raw() RawSkaRecord {
	return RawSkaRecord{
		OnetsocCode:       r.OnetsocCode,
		ElementID:         r.ElementID,
		ScaleID:           r.ScaleID,
		DataValue:         formatNumber(field.Some(r.DataValue)),
		N:                 formatNumber(r.N),
		StandardError:     formatNumber(r.StandardError),
		LowerCIBound:      formatNumber(r.LowerCIBound),
		UpperCIBound:      formatNumber(r.UpperCIBound),
		RecommendSuppress: r.RecommendSuppress.String(),
		NotRelevant:       r.NotRelevant.String(),
		DateUpdated:       r.DateUpdated.String(),
		DomainSource:      r.DomainSource.String(),
	}
}
