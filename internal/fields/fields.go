// Package fields defines the user-configurable extraction schema: which
// fields to pull out of an invoice, how to validate them, and named
// presets grouping fields for a document category.
package fields

import (
	"fmt"
	"regexp"
	"sort"
)

// DataType is the value type of an extractable field.
type DataType string

const (
	TypeText     DataType = "text"
	TypeNumber   DataType = "number"
	TypeDate     DataType = "date"
	TypeCurrency DataType = "currency"
)

// validDataTypes for membership checks during validation.
var validDataTypes = map[DataType]bool{
	TypeText:     true,
	TypeNumber:   true,
	TypeDate:     true,
	TypeCurrency: true,
}

// validNamePattern matches field names usable as stable JSON keys.
var validNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Descriptor describes one extractable invoice field.
type Descriptor struct {
	Name           string   `json:"name"`
	Label          string   `json:"label,omitempty"`
	Description    string   `json:"description"`
	DataType       DataType `json:"data_type"`
	Required       bool     `json:"required,omitempty"`
	DefaultValue   string   `json:"default_value,omitempty"`
	ExtractionHint string   `json:"extraction_hint,omitempty"`
}

// Schema is an ordered list of field descriptors plus named presets.
// A schema is immutable for the duration of an extraction run.
type Schema struct {
	Fields  []Descriptor        `json:"fields"`
	Presets map[string][]string `json:"presets,omitempty"`
}

// SchemaError reports an invalid field or preset definition.
// Schema errors are rejected at configuration time, never mid-run.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid schema: %s", e.Reason)
	}
	return fmt.Sprintf("invalid schema: field %q: %s", e.Field, e.Reason)
}

// Validate checks schema invariants: unique well-formed names, known
// data types, and presets that reference only defined fields.
func (s *Schema) Validate() error {
	if len(s.Fields) == 0 {
		return &SchemaError{Reason: "no fields defined"}
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, d := range s.Fields {
		if !validNamePattern.MatchString(d.Name) {
			return &SchemaError{Field: d.Name, Reason: "name must be alphanumeric with underscores"}
		}
		if seen[d.Name] {
			return &SchemaError{Field: d.Name, Reason: "duplicate field name"}
		}
		seen[d.Name] = true

		if !validDataTypes[d.DataType] {
			return &SchemaError{Field: d.Name, Reason: fmt.Sprintf("unknown data type %q", d.DataType)}
		}
	}

	for preset, names := range s.Presets {
		for _, name := range names {
			if !seen[name] {
				return &SchemaError{Field: name, Reason: fmt.Sprintf("preset %q references undefined field", preset)}
			}
		}
	}

	return nil
}

// Field returns the descriptor for a field name, if defined.
func (s *Schema) Field(name string) (Descriptor, bool) {
	for _, d := range s.Fields {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// FieldNames returns field names in schema order.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, d := range s.Fields {
		names = append(names, d.Name)
	}
	return names
}

// Preset returns the subset schema for a named preset, preserving the
// parent schema's field order. Unknown preset names return an error.
func (s *Schema) Preset(name string) (*Schema, error) {
	members, ok := s.Presets[name]
	if !ok {
		return nil, fmt.Errorf("preset not found: %s", name)
	}

	include := make(map[string]bool, len(members))
	for _, m := range members {
		include[m] = true
	}

	sub := &Schema{}
	for _, d := range s.Fields {
		if include[d.Name] {
			sub.Fields = append(sub.Fields, d)
		}
	}
	return sub, nil
}

// PresetNames returns all preset names, sorted for stable output.
func (s *Schema) PresetNames() []string {
	names := make([]string, 0, len(s.Presets))
	for name := range s.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
