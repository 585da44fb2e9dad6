package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches a ```json fenced block containing an object or array.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\}|\\[.*?\\])\\s*```")

// DecodeRecordJSON recovers a field->value mapping from raw model
// output. Models wrap JSON in markdown fences or return a single-item
// array instead of an object; both are tolerated. Values that arrive
// as numbers or booleans are coerced to strings.
func DecodeRecordJSON(raw string) (map[string]string, error) {
	payload := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(raw); m != nil {
		payload = m[1]
	}

	var obj map[string]any
	if strings.HasPrefix(payload, "[") {
		var arr []map[string]any
		if err := json.Unmarshal([]byte(payload), &arr); err != nil {
			return nil, fmt.Errorf("failed to parse JSON array: %w", err)
		}
		if len(arr) == 0 {
			return nil, fmt.Errorf("JSON array was empty")
		}
		obj = arr[0]
	} else {
		if err := json.Unmarshal([]byte(payload), &obj); err != nil {
			return nil, fmt.Errorf("failed to parse JSON object: %w", err)
		}
	}

	record := make(map[string]string, len(obj))
	for k, v := range obj {
		record[k] = coerceString(v)
	}
	return record, nil
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		// Keep integers clean ("42", not "42.000000").
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
