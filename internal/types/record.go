// Package types provides shared types used across multiple packages.
// This package has no dependencies on other fieldlens packages to avoid
// import cycles.
package types

// Confidence indicates how certain the pipeline is about an extracted value.
type Confidence string

const (
	ConfidenceCertain   Confidence = "certain"
	ConfidenceAmbiguous Confidence = "ambiguous"
)

// FieldValue is one extracted field with its verification outcome.
// Value is nil when the field was missing from the model response.
type FieldValue struct {
	Value      *string    `json:"value"`
	Confidence Confidence `json:"confidence"`
	Note       string     `json:"note,omitempty"`
}

// Record maps field names to verified values for a single document.
// Ordering is never derived from the map; exports iterate the schema.
type Record map[string]FieldValue

// NewFieldValue returns a certain field value.
func NewFieldValue(value string) FieldValue {
	return FieldValue{Value: &value, Confidence: ConfidenceCertain}
}

// AmbiguousFieldValue returns an ambiguous field value with an explanatory note.
// Pass nil value for missing fields.
func AmbiguousFieldValue(value *string, note string) FieldValue {
	return FieldValue{Value: value, Confidence: ConfidenceAmbiguous, Note: note}
}

// AmbiguousCount returns the number of ambiguous fields in the record.
func (r Record) AmbiguousCount() int {
	n := 0
	for _, fv := range r {
		if fv.Confidence == ConfidenceAmbiguous {
			n++
		}
	}
	return n
}

// RawRecord is the model's extraction output before verification:
// field name to raw string value, exactly as the model returned it.
type RawRecord map[string]string
