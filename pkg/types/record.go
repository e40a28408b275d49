// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pubsum pipeline:
// the uniform publication record, its year value, and stage configuration.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Year is a publication year that is either a valid integer or missing.
// The zero value is missing.
type Year struct {
	value int
	valid bool
}

// YearOf returns a valid Year holding n.
func YearOf(n int) Year {
	return Year{value: n, valid: true}
}

// MissingYear returns the missing Year.
func MissingYear() Year {
	return Year{}
}

// ParseYear coerces free text into a Year. Surrounding whitespace, braces
// and quotes are ignored. Integral decimal text ("2020.0") is accepted;
// anything else is missing.
func ParseYear(s string) Year {
	s = strings.Trim(strings.TrimSpace(s), `{}"`)
	s = strings.TrimSpace(s)
	if s == "" {
		return Year{}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return YearOf(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return Year{}
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return Year{}
	}
	return YearOf(int(f))
}

// Int returns the numeric year and whether it is present.
func (y Year) Int() (int, bool) {
	return y.value, y.valid
}

// Valid reports whether the year is present.
func (y Year) Valid() bool { return y.valid }

// String renders the year as decimal text, or "" when missing.
func (y Year) String() string {
	if !y.valid {
		return ""
	}
	return strconv.Itoa(y.value)
}

// MarshalJSON encodes a valid year as a number and a missing year as null.
func (y Year) MarshalJSON() ([]byte, error) {
	if !y.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(y.value)), nil
}

// UnmarshalJSON accepts a number, a numeric string, or null.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*y = Year{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding year: %w", err)
		}
		*y = ParseYear(s)
		return nil
	}
	*y = ParseYear(string(data))
	return nil
}

// Record is a publication in the uniform schema. Every source format
// (BibTeX, spreadsheet, external profile) is normalized into this shape.
// Records are values; stages return new slices rather than mutating.
type Record struct {
	// Title is the publication title.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, or missing when it could not be coerced.
	Year Year `json:"year" yaml:"-"`

	// Venue is the journal, proceedings or publisher. Exported as "journal".
	Venue string `json:"journal" yaml:"journal"`

	// Authors is the free-form author list as it appeared in the source.
	Authors string `json:"authors" yaml:"authors"`
}

// RecordSet is an ordered collection of records.
type RecordSet []Record

// Clone returns a copy of the set that shares no backing array with rs.
func (rs RecordSet) Clone() RecordSet {
	if rs == nil {
		return nil
	}
	out := make(RecordSet, len(rs))
	copy(out, rs)
	return out
}

// Columns are the uniform schema's column names in export order.
var Columns = []string{"title", "year", "journal", "authors"}
