package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onetl/internal/registry"
	"onetl/pkg/field"
)

func testLookups() registry.Lookups {
	return registry.New([]string{"2.A.1.a", "2.A.1.b", "1.A.1.a.1"})
}

func validRecord() RawSkaRecord {
	return RawSkaRecord{
		OnetsocCode:  "11-1011.00",
		ElementID:    "2.A.1.a",
		ScaleID:      "IM",
		DataValue:    "3.5",
		N:            "428",
		DateUpdated:  "2008-06-01",
		DomainSource: "Analyst",
	}
}

func TestTransformValidRow(t *testing.T) {
	tr := NewSkaTransformer(testLookups(), nil)

	valid, invalid, stats := tr.Transform(DomainSkill, []RawSkaRecord{validRecord()})

	require.Len(t, valid, 1)
	assert.Empty(t, invalid)
	assert.Zero(t, stats.Repairs)

	row := valid[0]
	assert.Equal(t, DomainSkill, row.Domain)
	assert.Equal(t, "11-1011.00", row.OnetsocCode)
	assert.Equal(t, "2.A.1.a", row.ElementID)
	assert.Equal(t, "IM", row.ScaleID)
	assert.Equal(t, 3.5, row.DataValue)
	assert.Equal(t, field.Some(428.0), row.N)
	assert.False(t, row.StandardError.Present())
	assert.Equal(t, field.Staging("2008-06-01"), row.DateUpdated)
	assert.Equal(t, field.Staging("Analyst"), row.DomainSource)
	assert.Equal(t, field.Staging(field.Unavailable), row.RecommendSuppress)
	assert.Equal(t, field.Staging(field.Unavailable), row.NotRelevant)
}

func TestTransformQuarantinesBadSOC(t *testing.T) {
	tr := NewSkaTransformer(testLookups(), nil)
	rec := validRecord()
	rec.OnetsocCode = "bad-code"

	valid, invalid, _ := tr.Transform(DomainSkill, []RawSkaRecord{rec})

	assert.Empty(t, valid)
	require.Len(t, invalid, 1)
	assert.Equal(t, ReasonInvalidSOCFormat, invalid[0].Reason)
	assert.Equal(t, DomainSkill, invalid[0].Domain)
	// Original field values are preserved verbatim, not the cleaned copies.
	assert.Equal(t, rec, invalid[0].Record)
}

func TestTransformQuarantinesUnparsableDataValue(t *testing.T) {
	tr := NewSkaTransformer(testLookups(), nil)
	rec := validRecord()
	rec.DataValue = "N/A"

	valid, invalid, _ := tr.Transform(DomainKnowledge, []RawSkaRecord{rec})

	assert.Empty(t, valid)
	require.Len(t, invalid, 1)
	// Keys are fine; the mandatory numeric still quarantines the row.
	assert.Equal(t, ReasonInvalidDataValue, invalid[0].Reason)
	assert.Equal(t, rec, invalid[0].Record)
}

func TestTransformRepairsInvertedInterval(t *testing.T) {
	tr := NewSkaTransformer(testLookups(), nil)
	rec := validRecord()
	rec.LowerCIBound = "4.2"
	rec.UpperCIBound = "1.1"

	valid, invalid, stats := tr.Transform(DomainAbility, []RawSkaRecord{rec})

	require.Len(t, valid, 1)
	assert.Empty(t, invalid)
	assert.Equal(t, 1, stats.Repairs)
	assert.Equal(t, field.Some(1.1), valid[0].LowerCIBound)
	assert.Equal(t, field.Some(4.2), valid[0].UpperCIBound)
}

func TestTransformOptionalNumericsStayAbsent(t *testing.T) {
	tr := NewSkaTransformer(testLookups(), nil)
	rec := validRecord()
	rec.N = ""
	rec.StandardError = "not recorded"
	rec.LowerCIBound = "NaN"

	valid, _, _ := tr.Transform(DomainSkill, []RawSkaRecord{rec})

	require.Len(t, valid, 1)
	assert.False(t, valid[0].N.Present())
	assert.False(t, valid[0].StandardError.Present())
	assert.False(t, valid[0].LowerCIBound.Present())
}

func TestTransformAcceptsLowercaseScale(t *testing.T) {
	tr := NewSkaTransformer(testLookups(), nil)
	rec := validRecord()
	rec.ScaleID = " lv "

	valid, invalid, _ := tr.Transform(DomainSkill, []RawSkaRecord{rec})

	require.Len(t, valid, 1)
	assert.Empty(t, invalid)
	assert.Equal(t, "LV", valid[0].ScaleID)
}

func TestTransformConservationAndOrder(t *testing.T) {
	tr := NewSkaTransformer(testLookups(), nil)

	bad := validRecord()
	bad.OnetsocCode = "bad-code"
	second := validRecord()
	second.ElementID = "2.A.1.b"
	third := validRecord()
	third.ScaleID = "ZZ"
	fourth := validRecord()
	fourth.ElementID = "1.A.1.a.1"

	input := []RawSkaRecord{validRecord(), bad, second, third, fourth}
	valid, invalid, _ := tr.Transform(DomainSkill, input)

	// No row is silently dropped.
	assert.Equal(t, len(input), len(valid)+len(invalid))

	// Both streams keep input order.
	require.Len(t, valid, 3)
	assert.Equal(t, "2.A.1.a", valid[0].ElementID)
	assert.Equal(t, "2.A.1.b", valid[1].ElementID)
	assert.Equal(t, "1.A.1.a.1", valid[2].ElementID)

	require.Len(t, invalid, 2)
	assert.Equal(t, ReasonInvalidSOCFormat, invalid[0].Reason)
	assert.Equal(t, ReasonInvalidScaleID, invalid[1].Reason)
}

func TestTransformDeterminism(t *testing.T) {
	tr := NewSkaTransformer(testLookups(), nil)

	bad := validRecord()
	bad.DataValue = "xx"
	input := []RawSkaRecord{validRecord(), bad}

	valid1, invalid1, _ := tr.Transform(DomainSkill, input)
	valid2, invalid2, _ := tr.Transform(DomainSkill, input)

	assert.Equal(t, valid1, valid2)
	assert.Equal(t, invalid1, invalid2)
}

func TestTransformIdempotentOverOwnOutput(t *testing.T) {
	tr := NewSkaTransformer(testLookups(), nil)

	inverted := validRecord()
	inverted.LowerCIBound = "4.2"
	inverted.UpperCIBound = "1.1"
	inverted.RecommendSuppress = "y"
	input := []RawSkaRecord{validRecord(), inverted}

	valid, _, _ := tr.Transform(DomainSkill, input)
	require.Len(t, valid, 2)

	// Feed the normalized output back through as raw input.
	echo := make([]RawSkaRecord, 0, len(valid))
	for _, row := range valid {
		echo = append(echo, row.Raw())
	}
	again, invalid, stats := tr.Transform(DomainSkill, echo)

	assert.Empty(t, invalid)
	assert.Zero(t, stats.Repairs)
	assert.Equal(t, valid, again)
}
