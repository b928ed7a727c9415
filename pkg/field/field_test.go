package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStagingText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Staging
	}{
		{
			name:     "plain value",
			input:    "Y",
			expected: "Y",
		},
		{
			name:     "trims whitespace",
			input:    "  2008-06-01  ",
			expected: "2008-06-01",
		},
		{
			name:     "empty becomes unavailable",
			input:    "",
			expected: Unavailable,
		},
		{
			name:     "whitespace only becomes unavailable",
			input:    "   ",
			expected: Unavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StagingText(tt.input))
		})
	}
}

func TestStagingFact(t *testing.T) {
	v, ok := StagingText("Analyst").Fact().Get()
	assert.True(t, ok)
	assert.Equal(t, "Analyst", v)

	// The staging substitute must become a true absence at fact level.
	_, ok = StagingText("").Fact().Get()
	assert.False(t, ok)
	_, ok = Staging(Unavailable).Fact().Get()
	assert.False(t, ok)
}

func TestFact(t *testing.T) {
	absent := None[float64]()
	assert.False(t, absent.Present())
	assert.Zero(t, absent.MustGet())

	present := Some(3.5)
	v, ok := present.Get()
	assert.True(t, ok)
	assert.Equal(t, 3.5, v)
}
