package transform

import (
	"strings"
	"time"

	"onetl/pkg/field"
)

// normalizeSpace collapses internal whitespace runs and trims both ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalizeRecord trims every textual field of a raw SKA record. Scale case
// is normalized here because the source files mix it; everything else keeps
// its content.
func normalizeRecord(r RawSkaRecord) RawSkaRecord {
	return RawSkaRecord{
		OnetsocCode:       normalizeSpace(r.OnetsocCode),
		ElementID:         normalizeSpace(r.ElementID),
		ScaleID:           strings.ToUpper(normalizeSpace(r.ScaleID)),
		DataValue:         strings.TrimSpace(r.DataValue),
		N:                 strings.TrimSpace(r.N),
		StandardError:     strings.TrimSpace(r.StandardError),
		LowerCIBound:      strings.TrimSpace(r.LowerCIBound),
		UpperCIBound:      strings.TrimSpace(r.UpperCIBound),
		RecommendSuppress: strings.TrimSpace(r.RecommendSuppress),
		NotRelevant:       strings.TrimSpace(r.NotRelevant),
		DateUpdated:       strings.TrimSpace(r.DateUpdated),
		DomainSource:      strings.TrimSpace(r.DomainSource),
	}
}

// normalizeFlag maps flag-like input to "Y"/"N", or the staging substitute
// when the input carries no recognizable answer.
func normalizeFlag(s string) field.Staging {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "Y", "T", "TRUE", "1":
		return "Y"
	case "N", "F", "FALSE", "0":
		return "N"
	default:
		return field.Unavailable
	}
}

var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006/01/02"}

// normalizeDate standardizes common source date spellings to ISO-8601, or
// the staging substitute when none match.
func normalizeDate(s string) field.Staging {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return field.Unavailable
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return field.Staging(d.Format("2006-01-02"))
		}
	}
	return field.Unavailable
}
