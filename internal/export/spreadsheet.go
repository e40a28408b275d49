// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export serializes record sets for download: an .xlsx
// spreadsheet, a .docx publication summary, and a CSL-YAML bibliography.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/pubsum/pkg/types"
)

const (
	SpreadsheetMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	SpreadsheetFileName = "publication_summary.xlsx"

	// SheetName is the single worksheet written by Spreadsheet.
	SheetName = "Sheet1"
)

// Spreadsheet writes records to a single-sheet workbook with a header row
// of the schema columns and one row per record, no index column. Valid
// years are numeric cells; missing years are left empty.
func Spreadsheet(records types.RecordSet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(types.Columns))
	for i, c := range types.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, r := range records {
		var year any
		if y, ok := r.Year.Int(); ok {
			year = y
		}
		row := []any{r.Title, year, r.Venue, r.Authors}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}
