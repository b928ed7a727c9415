package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onetl/pkg/field"
)

func TestTransformOccupations(t *testing.T) {
	records := []RawOccupation{
		{OnetsocCode: " 11-1011.00 ", Title: "  Chief   Executives ", Description: "Determine and formulate policies."},
		{OnetsocCode: "11-1011.00", Title: "Duplicate Entry", Description: "Should be dropped"},
		{OnetsocCode: "53-7199.99", Title: "Material Moving Workers", Description: ""},
		{OnetsocCode: "", Title: "No Code"},
		{OnetsocCode: "15-1252.00", Title: ""},
	}

	out := TransformOccupations(records)
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, "11-1011.00", first.OnetsocCode)
	assert.Equal(t, "Chief Executives", first.Title)
	assert.Equal(t, field.Staging("Determine and formulate policies."), first.Description)
	assert.Equal(t, field.Staging("11"), first.MajorGroupCode)

	second := out[1]
	assert.Equal(t, "53-7199.99", second.OnetsocCode)
	assert.Equal(t, field.Staging(field.Unavailable), second.Description)
	assert.Equal(t, field.Staging("53"), second.MajorGroupCode)
}

func TestTransformOccupationsKeepsFirstDuplicate(t *testing.T) {
	out := TransformOccupations([]RawOccupation{
		{OnetsocCode: "11-1011.00", Title: "First Title", Description: "first"},
		{OnetsocCode: "11-1011.00", Title: "Second Title", Description: "second"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "First Title", out[0].Title)
	assert.Equal(t, field.Staging("first"), out[0].Description)
}

func TestMajorGroupCode(t *testing.T) {
	tests := []struct {
		code     string
		expected field.Staging
	}{
		{"11-1011.00", "11"},
		{"53-7199.99", "53"},
		// Malformed codes propagate with the substitute; there is no
		// occupation quarantine path.
		{"111011.00", field.Unavailable},
		{"1-1011.00", "1"},
		{"x", field.Unavailable},
		{"-1011.00", field.Unavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, majorGroupCode(tt.code))
		})
	}
}
