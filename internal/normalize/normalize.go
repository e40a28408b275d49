// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts uploaded bibliography and spreadsheet files
// into the uniform record schema (title, year, venue, authors).
package normalize

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/pdiddy/pubsum/pkg/types"
)

// Format identifies the declared format of an uploaded file.
type Format string

const (
	FormatBibTeX      Format = "bibtex"
	FormatSpreadsheet Format = "spreadsheet"
)

// extensions maps accepted file extensions to formats.
var extensions = map[string]Format{
	".bib":  FormatBibTeX,
	".xlsx": FormatSpreadsheet,
}

// FormatError reports an upload whose extension is not supported.
type FormatError struct {
	Extension string
}

func (e *FormatError) Error() string {
	if e.Extension == "" {
		return "unsupported file format (no extension): upload a .bib or .xlsx file"
	}
	return fmt.Sprintf("unsupported file format %q: upload a .bib or .xlsx file", e.Extension)
}

// ParseError reports file content that could not be read in its declared format.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("reading %s file: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsFormatError returns true if err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// FormatFromFilename selects the format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", &FormatError{Extension: ext}
}

// Normalize parses data in the declared format.
func Normalize(data []byte, format Format) (types.RecordSet, error) {
	switch format {
	case FormatBibTeX:
		return FromBibTeX(data)
	case FormatSpreadsheet:
		return FromSpreadsheet(data)
	default:
		return nil, &FormatError{Extension: string(format)}
	}
}

// NormalizeFile selects the format from name and parses data.
func NormalizeFile(name string, data []byte) (types.RecordSet, error) {
	format, err := FormatFromFilename(name)
	if err != nil {
		return nil, err
	}
	return Normalize(data, format)
}

// ContentKey returns the cache key for an upload: the format and the
// BLAKE3 hash of its bytes. Identical content under a different file name
// maps to the same key.
func ContentKey(format Format, data []byte) string {
	sum := blake3.Sum256(data)
	return string(format) + ":" + hex.EncodeToString(sum[:])
}
