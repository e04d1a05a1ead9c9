package rcparse

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRecordJSONAcceptsExtractedRecord(t *testing.T) {
	rec := ExtractFallback(sampleRC, 78)
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	assert.NoError(t, ValidateRecordJSON(data))
}

func TestValidateRecordJSONRejectsUnknownKey(t *testing.T) {
	rec := ExtractFallback(sampleRC, 78)
	m := rec.FieldMap()
	payload := make(map[string]any, len(m)+2)
	for k, v := range m {
		payload[k] = v
	}
	payload["ocrConfidence"] = 78
	payload["bogus"] = "nope"
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.Error(t, ValidateRecordJSON(data))
}

func TestValidateRecordJSONRejectsMissingField(t *testing.T) {
	rec := ExtractFallback(sampleRC, 78)
	m := rec.FieldMap()
	payload := make(map[string]any, len(m))
	for k, v := range m {
		payload[k] = v
	}
	delete(payload, "chassisNo")
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.Error(t, ValidateRecordJSON(data))
}

func TestValidateRecordJSONRejectsWrongType(t *testing.T) {
	rec := ExtractFallback(sampleRC, 78)
	m := rec.FieldMap()
	payload := make(map[string]any, len(m)+1)
	for k, v := range m {
		payload[k] = v
	}
	payload["ocrConfidence"] = "seventy-eight"
	data, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.Error(t, ValidateRecordJSON(data))
}

func TestValidateRecordJSONRejectsGarbage(t *testing.T) {
	assert.Error(t, ValidateRecordJSON([]byte("not json")))
	assert.Error(t, ValidateRecordJSON([]byte(`[1,2,3]`)))
}
