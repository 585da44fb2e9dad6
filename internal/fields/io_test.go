package fields

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDecode(t *testing.T) {
	t.Run("decodes a valid schema file", func(t *testing.T) {
		data := []byte(`{
			"fields": [
				{"name": "invoice_number", "description": "Invoice number", "data_type": "text", "required": true},
				{"name": "total", "description": "Total", "data_type": "currency"}
			],
			"presets": {"Minimal": ["invoice_number"]}
		}`)
		s, err := Decode(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(s.Fields) != 2 {
			t.Errorf("expected 2 fields, got %d", len(s.Fields))
		}
		if !s.Fields[0].Required {
			t.Error("expected invoice_number to be required")
		}
	})

	t.Run("rejects missing fields key", func(t *testing.T) {
		if _, err := Decode([]byte(`{"presets": {}}`)); err == nil {
			t.Error("expected error for missing fields")
		}
	})

	t.Run("rejects unknown data type", func(t *testing.T) {
		data := []byte(`{"fields": [{"name": "x", "description": "x", "data_type": "array"}]}`)
		if _, err := Decode(data); err == nil {
			t.Error("expected error for unknown data type")
		}
	})

	t.Run("rejects unknown top-level keys", func(t *testing.T) {
		data := []byte(`{"fields": [{"name": "x", "description": "x", "data_type": "text"}], "extra": 1}`)
		if _, err := Decode(data); err == nil {
			t.Error("expected error for unknown key")
		}
	})

	t.Run("rejects invalid JSON", func(t *testing.T) {
		if _, err := Decode([]byte(`not json`)); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})

	t.Run("rejects preset referencing undefined field", func(t *testing.T) {
		data := []byte(`{
			"fields": [{"name": "x", "description": "x", "data_type": "text"}],
			"presets": {"Bad": ["missing"]}
		}`)
		if _, err := Decode(data); err == nil {
			t.Error("expected error for undefined preset member")
		}
	})
}

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fields.json")

	original := Default()
	if err := Save(original, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// The round trip is lossless: every descriptor attribute and every
	// preset survives, not just the field names.
	if !reflect.DeepEqual(loaded.Fields, original.Fields) {
		t.Errorf("fields changed across save/load:\n got %+v\nwant %+v", loaded.Fields, original.Fields)
	}
	if !reflect.DeepEqual(loaded.Presets, original.Presets) {
		t.Errorf("presets changed across save/load:\n got %+v\nwant %+v", loaded.Presets, original.Presets)
	}

	t.Run("load rejects a broken file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(bad, []byte(`{"fields": []}`), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(bad); err == nil {
			t.Error("expected error for empty fields array")
		}
	})
}

func TestResponseSchema(t *testing.T) {
	s := &Schema{
		Fields: []Descriptor{
			{Name: "invoice_number", Description: "Invoice number", DataType: TypeText, Required: true},
			{Name: "notes", Description: "Notes", DataType: TypeText},
		},
	}

	raw, err := ResponseSchema(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wrapper struct {
		Name   string `json:"name"`
		Strict bool   `json:"strict"`
		Schema struct {
			Type                 string         `json:"type"`
			Properties           map[string]any `json:"properties"`
			Required             []string       `json:"required"`
			AdditionalProperties bool           `json:"additionalProperties"`
		} `json:"schema"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		t.Fatalf("response schema is not valid JSON: %v", err)
	}

	if wrapper.Name == "" || !wrapper.Strict {
		t.Error("expected named strict schema")
	}
	if wrapper.Schema.Type != "object" {
		t.Errorf("expected object schema, got %s", wrapper.Schema.Type)
	}
	if len(wrapper.Schema.Properties) != 2 {
		t.Errorf("expected 2 properties, got %d", len(wrapper.Schema.Properties))
	}
	if wrapper.Schema.AdditionalProperties {
		t.Error("expected additionalProperties false")
	}
	if strings.Join(wrapper.Schema.Required, ",") != "invoice_number" {
		t.Errorf("expected required [invoice_number], got %v", wrapper.Schema.Required)
	}
}
