package export

import (
	"encoding/csv"
	"fmt"
	"io"
)

// WriteCSV writes the batch as CSV: header row then one row per document.
func WriteCSV(w io.Writer, b *Batch) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(b.Header()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range b.Rows() {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
