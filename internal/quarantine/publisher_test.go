package quarantine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onetl/internal/transform"
)

func TestEventFromCarriesRawValues(t *testing.T) {
	row := transform.InvalidSkaRow{
		Domain: transform.DomainKnowledge,
		Reason: transform.ReasonInvalidDataValue,
		Record: transform.RawSkaRecord{
			OnetsocCode: "11-1011.00",
			ElementID:   "2.C.1.a",
			ScaleID:     "IM",
			DataValue:   "N/A",
			DateUpdated: "07/01/2014",
		},
	}

	event := eventFrom("run-1", row)
	assert.Equal(t, "run-1", event.RunID)
	assert.Equal(t, "KNOWLEDGE", event.Domain)
	assert.Equal(t, "invalid_numeric_data_value", event.Reason)
	// The event carries the extracted text untouched.
	assert.Equal(t, "N/A", event.DataValue)
	assert.Equal(t, "07/01/2014", event.DateUpdated)

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "invalid_numeric_data_value", decoded["error_reason"])
	assert.Equal(t, "N/A", decoded["data_value"])
}
