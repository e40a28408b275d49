// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/pubsum/pkg/types"
)

// Table writes records as a fixed-width listing for the terminal.
func Table(records types.RecordSet, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No publications.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-4s  %-56s  %-28s  %s\n", "#", "Year", "Title", "Journal", "Authors")
	fmt.Fprintln(w, strings.Repeat("-", 120))
	for i, r := range records {
		fmt.Fprintf(w, "%-4d  %-4s  %-56s  %-28s  %s\n",
			i+1, r.Year.String(), truncate(r.Title, 56), truncate(r.Venue, 28), truncate(r.Authors, 24))
	}
	fmt.Fprintf(w, "\n%d publications\n", len(records))
}

// JSON writes records as an indented JSON array.
func JSON(records types.RecordSet, w io.Writer) error {
	if records == nil {
		records = types.RecordSet{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
