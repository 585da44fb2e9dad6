package export

import (
	"encoding/json"

	"github.com/fieldlens/fieldlens/internal/types"
)

// DocumentExport is the detailed JSON representation of one document.
type DocumentExport struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Status types.Status      `json:"status"`
	Fields []FieldExport     `json:"fields"`
	Schema map[string]string `json:"schema"` // field name -> data type
}

// FieldExport is one field with its verification outcome, emitted in
// schema order rather than map order.
type FieldExport struct {
	Name       string           `json:"name"`
	Value      *string          `json:"value"`
	Confidence types.Confidence `json:"confidence"`
	Note       string           `json:"note,omitempty"`
}

// JSON renders the batch as an indented JSON array with per-field
// confidence and notes preserved.
func JSON(b *Batch) ([]byte, error) {
	schemaRef := make(map[string]string, len(b.Schema.Fields))
	for _, d := range b.Schema.Fields {
		schemaRef[d.Name] = string(d.DataType)
	}

	out := make([]DocumentExport, 0, len(b.Documents))
	for _, doc := range b.Documents {
		de := DocumentExport{
			ID:     doc.ID.String(),
			Name:   doc.Name,
			Status: doc.Status,
			Schema: schemaRef,
		}
		for _, d := range b.Schema.Fields {
			fv := doc.Record[d.Name]
			de.Fields = append(de.Fields, FieldExport{
				Name:       d.Name,
				Value:      fv.Value,
				Confidence: fv.Confidence,
				Note:       fv.Note,
			})
		}
		out = append(out, de)
	}

	return json.MarshalIndent(out, "", "  ")
}
