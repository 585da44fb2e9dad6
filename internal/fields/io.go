package fields

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/field_schema.json
var metaSchemaFS embed.FS

// metaSchema validates schema import files before decoding.
var metaSchema = mustCompileMetaSchema()

func mustCompileMetaSchema() *jsonschema.Schema {
	raw, err := metaSchemaFS.ReadFile("schemas/field_schema.json")
	if err != nil {
		panic(fmt.Sprintf("embedded field schema missing: %v", err))
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("field_schema.json", bytes.NewReader(raw)); err != nil {
		panic(fmt.Sprintf("failed to add field schema resource: %v", err))
	}
	s, err := c.Compile("field_schema.json")
	if err != nil {
		panic(fmt.Sprintf("failed to compile field schema: %v", err))
	}
	return s
}

// Decode parses and validates a schema from its JSON representation.
func Decode(data []byte) (*Schema, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}
	if err := metaSchema.Validate(doc); err != nil {
		return nil, &SchemaError{Reason: err.Error()}
	}

	var s Schema
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("decode failed: %v", err)}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Encode serializes a schema to indented JSON.
// Decode(Encode(s)) yields a schema equal to s.
func Encode(s *Schema) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

// Load reads and validates a schema file from disk.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Decode(data)
}

// Save writes a schema file to disk.
func Save(s *Schema, path string) error {
	data, err := Encode(s)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema file: %w", err)
	}
	return nil
}
