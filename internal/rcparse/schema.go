package rcparse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/garagehub/rc-intake/constants"
)

// Schema returns a JSON-Schema (draft 2020-12 subset) describing the record
// payload the review UI sends back. Used locally to validate edited records
// before they are persisted.
func Schema() map[string]any {
	props := make(map[string]any, len(constants.RCFieldKeys)+2)
	for _, key := range constants.RCFieldKeys {
		props[key] = map[string]any{"type": "string"}
	}
	props["ocrConfidence"] = map[string]any{"type": "number"}
	props["extractedDate"] = map[string]any{"type": "string"}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             constants.RCFieldKeys,
	}
}

// ValidateRecordJSON validates a record payload against Schema.
func ValidateRecordJSON(data []byte) error {
	b, err := json.Marshal(Schema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("rc-record.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("rc-record.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
