// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/pubsum/pkg/types"
)

// headerAliases maps accepted header names to schema fields.
var headerAliases = map[string]string{
	"title":   "title",
	"year":    "year",
	"journal": "venue",
	"venue":   "venue",
	"authors": "authors",
	"author":  "authors",
}

// FromSpreadsheet reads the first sheet of an .xlsx workbook. The first
// row is a header naming the schema fields; each non-blank row after it
// becomes one record. Columns the header does not name are ignored.
func FromSpreadsheet(data []byte) (types.RecordSet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Format: FormatSpreadsheet, Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return types.RecordSet{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Format: FormatSpreadsheet, Err: fmt.Errorf("sheet %s: %w", sheets[0], err)}
	}
	if len(rows) == 0 {
		return types.RecordSet{}, nil
	}

	columns := make(map[string]int)
	for i, h := range rows[0] {
		field, ok := headerAliases[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			continue
		}
		if _, seen := columns[field]; !seen {
			columns[field] = i
		}
	}

	records := make(types.RecordSet, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		cell := func(field string) string {
			i, ok := columns[field]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}
		records = append(records, types.Record{
			Title:   cell("title"),
			Year:    types.ParseYear(cell("year")),
			Venue:   cell("venue"),
			Authors: cell("authors"),
		})
	}
	return records, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
