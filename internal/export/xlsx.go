package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Invoices"

// WriteXLSX renders the batch as an XLSX workbook and returns its bytes.
func WriteXLSX(b *Batch) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	// Drop the default sheet so the workbook only contains ours.
	_ = f.DeleteSheet("Sheet1")

	write := func(col, row int, v any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellValue(sheetName, cell, v)
	}

	for i, h := range b.Header() {
		if err := write(i+1, 1, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}
	for r, row := range b.Rows() {
		for c, v := range row {
			if err := write(c+1, r+2, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
