// Package export renders verified records as tabular (CSV/XLSX) and
// nested JSON outputs. All transformations are pure; column order
// always follows schema order so exports are stable and diffable.
package export

import (
	"github.com/fieldlens/fieldlens/internal/fields"
	"github.com/fieldlens/fieldlens/internal/types"
)

// Batch is an ordered set of documents exported against one schema.
// Read-only once built.
type Batch struct {
	Schema    *fields.Schema
	Documents []*types.Document
}

// NewBatch builds a batch from exportable documents, preserving order.
// Documents without a verified record are skipped.
func NewBatch(schema *fields.Schema, docs []*types.Document) *Batch {
	b := &Batch{Schema: schema}
	for _, d := range docs {
		if d.Exportable() && d.Record != nil {
			b.Documents = append(b.Documents, d)
		}
	}
	return b
}

// Header returns the column names: one value column per schema field,
// followed by one ambiguity flag column per field.
func (b *Batch) Header() []string {
	names := b.Schema.FieldNames()
	header := make([]string, 0, 2*len(names))
	header = append(header, names...)
	for _, name := range names {
		header = append(header, name+"_ambiguous")
	}
	return header
}

// Rows returns one row per document, aligned with Header. Values come
// from the schema-ordered record lookup, never map iteration; missing
// values render as empty strings and flags as "true"/"false".
func (b *Batch) Rows() [][]string {
	names := b.Schema.FieldNames()
	rows := make([][]string, 0, len(b.Documents))

	for _, doc := range b.Documents {
		row := make([]string, 0, 2*len(names))
		for _, name := range names {
			fv := doc.Record[name]
			if fv.Value != nil {
				row = append(row, *fv.Value)
			} else {
				row = append(row, "")
			}
		}
		for _, name := range names {
			if doc.Record[name].Confidence == types.ConfidenceAmbiguous {
				row = append(row, "true")
			} else {
				row = append(row, "false")
			}
		}
		rows = append(rows, row)
	}

	return rows
}
