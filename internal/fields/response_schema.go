package fields

import (
	"encoding/json"
	"fmt"
)

// ResponseSchema builds a JSON Schema describing the expected model
// output for an extraction run: one string property per field, in
// schema order, with required fields listed. The result is suitable
// for a structured-output response_format and for local validation.
func ResponseSchema(s *Schema) (json.RawMessage, error) {
	properties := make(map[string]any, len(s.Fields))
	required := make([]string, 0, len(s.Fields))

	for _, d := range s.Fields {
		prop := map[string]any{
			"type":        "string",
			"description": d.Description,
		}
		properties[d.Name] = prop
		if d.Required {
			required = append(required, d.Name)
		}
	}

	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}

	raw, err := json.Marshal(map[string]any{
		"name":   "invoice_extraction",
		"strict": true,
		"schema": schema,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize response schema: %w", err)
	}
	return raw, nil
}
