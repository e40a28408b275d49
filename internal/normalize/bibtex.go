// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pdiddy/pubsum/pkg/types"
)

// bibEntry is one parsed BibTeX entry with lower-cased field names.
type bibEntry struct {
	Type   string
	Key    string
	Fields map[string]string
}

// venueFields lists the BibTeX fields consulted for the venue, in order.
var venueFields = []string{"journal", "booktitle", "publisher"}

// monthMacros are the predefined BibTeX month abbreviations.
var monthMacros = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"may": "May", "jun": "June", "jul": "July", "aug": "August",
	"sep": "September", "oct": "October", "nov": "November", "dec": "December",
}

// FromBibTeX parses BibTeX source and returns one record per entry in
// file order. @string macros are expanded; @comment and @preamble blocks
// are skipped.
func FromBibTeX(data []byte) (types.RecordSet, error) {
	entries, err := parseBibTeX(string(data))
	if err != nil {
		return nil, &ParseError{Format: FormatBibTeX, Err: err}
	}
	records := make(types.RecordSet, 0, len(entries))
	for _, e := range entries {
		records = append(records, entryToRecord(e))
	}
	return records, nil
}

func entryToRecord(e bibEntry) types.Record {
	r := types.Record{
		Title:   e.Fields["title"],
		Year:    types.ParseYear(e.Fields["year"]),
		Authors: e.Fields["author"],
	}
	for _, f := range venueFields {
		if v := e.Fields[f]; v != "" {
			r.Venue = v
			break
		}
	}
	return r
}

// bibScanner is a hand-written recursive-descent reader for BibTeX.
type bibScanner struct {
	src    string
	pos    int
	macros map[string]string
}

func parseBibTeX(src string) ([]bibEntry, error) {
	s := &bibScanner{src: src, macros: make(map[string]string)}
	for k, v := range monthMacros {
		s.macros[k] = v
	}

	var entries []bibEntry
	for {
		// Text between entries is an implicit comment.
		at := strings.IndexByte(s.src[s.pos:], '@')
		if at < 0 {
			return entries, nil
		}
		s.pos += at + 1

		// An '@' not followed by a type and '{' or '(' is free text, such
		// as an email address in a comment line.
		kind := strings.ToLower(s.readIdent())
		if kind == "" {
			continue
		}
		resume := s.pos
		s.skipSpace()
		closer, ok := s.openDelim()
		if !ok {
			s.pos = resume
			continue
		}

		switch kind {
		case "comment", "preamble":
			if err := s.skipBalanced(closer); err != nil {
				return nil, err
			}
		case "string":
			fields, err := s.readFields(closer)
			if err != nil {
				return nil, err
			}
			for k, v := range fields {
				s.macros[k] = v
			}
		default:
			e, err := s.readEntry(kind, closer)
			if err != nil {
				return nil, err
			}
			entries = append(entries, e)
		}
	}
}

func (s *bibScanner) readEntry(kind string, closer byte) (bibEntry, error) {
	e := bibEntry{Type: kind}
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] != ',' && s.src[s.pos] != closer {
		s.pos++
	}
	if s.pos >= len(s.src) {
		return e, s.errorf("unterminated @%s entry", kind)
	}
	e.Key = strings.TrimSpace(s.src[start:s.pos])
	if s.src[s.pos] == closer {
		s.pos++
		e.Fields = map[string]string{}
		return e, nil
	}
	s.pos++ // ','

	fields, err := s.readFields(closer)
	if err != nil {
		return e, err
	}
	e.Fields = fields
	return e, nil
}

// readFields reads "name = value" pairs separated by commas up to closer.
func (s *bibScanner) readFields(closer byte) (map[string]string, error) {
	fields := make(map[string]string)
	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return nil, s.errorf("unexpected end of input in field list")
		}
		if s.src[s.pos] == closer {
			s.pos++
			return fields, nil
		}
		name := strings.ToLower(s.readIdent())
		if name == "" {
			return nil, s.errorf("expected field name")
		}
		s.skipSpace()
		if !s.consume('=') {
			return nil, s.errorf("expected '=' after field %q", name)
		}
		value, err := s.readValue(closer)
		if err != nil {
			return nil, err
		}
		fields[name] = cleanValue(value)

		s.skipSpace()
		if s.consume(',') {
			continue
		}
		if s.pos < len(s.src) && s.src[s.pos] == closer {
			continue
		}
		return nil, s.errorf("expected ',' or end of entry after field %q", name)
	}
}

// readValue reads one value: braced, quoted, numeric or macro parts joined by '#'.
func (s *bibScanner) readValue(closer byte) (string, error) {
	var b strings.Builder
	for {
		s.skipSpace()
		if s.pos >= len(s.src) {
			return "", s.errorf("unexpected end of input in value")
		}
		switch c := s.src[s.pos]; {
		case c == '{':
			s.pos++
			part, err := s.readBraced()
			if err != nil {
				return "", err
			}
			b.WriteString(part)
		case c == '"':
			s.pos++
			part, err := s.readQuoted()
			if err != nil {
				return "", err
			}
			b.WriteString(part)
		case c >= '0' && c <= '9':
			start := s.pos
			for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
				s.pos++
			}
			b.WriteString(s.src[start:s.pos])
		default:
			name := s.readIdent()
			if name == "" {
				return "", s.errorf("unexpected character %q in value", c)
			}
			b.WriteString(s.macros[strings.ToLower(name)])
		}
		s.skipSpace()
		if !s.consume('#') {
			return b.String(), nil
		}
	}
}

// readBraced returns the text up to the matching '}' with the outer braces removed.
func (s *bibScanner) readBraced() (string, error) {
	depth := 1
	start := s.pos
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				out := s.src[start:s.pos]
				s.pos++
				return out, nil
			}
		}
		s.pos++
	}
	return "", s.errorf("unbalanced braces")
}

// readQuoted returns the text up to the closing '"' at brace depth zero.
func (s *bibScanner) readQuoted() (string, error) {
	depth := 0
	start := s.pos
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '\\':
			s.pos++
		case '{':
			depth++
		case '}':
			depth--
		case '"':
			if depth == 0 {
				out := s.src[start:s.pos]
				s.pos++
				return out, nil
			}
		}
		s.pos++
	}
	return "", s.errorf("unterminated quoted value")
}

func (s *bibScanner) skipBalanced(closer byte) error {
	if closer == '}' {
		_, err := s.readBraced()
		return err
	}
	depth := 0
	for s.pos < len(s.src) {
		switch s.src[s.pos] {
		case '(':
			depth++
		case ')':
			if depth == 0 {
				s.pos++
				return nil
			}
			depth--
		}
		s.pos++
	}
	return s.errorf("unterminated block")
}

func (s *bibScanner) openDelim() (byte, bool) {
	if s.consume('{') {
		return '}', true
	}
	if s.consume('(') {
		return ')', true
	}
	return 0, false
}

func (s *bibScanner) readIdent() string {
	start := s.pos
	for s.pos < len(s.src) {
		c := rune(s.src[s.pos])
		if unicode.IsLetter(c) || unicode.IsDigit(c) || strings.ContainsRune("_-:.+/'", c) {
			s.pos++
			continue
		}
		break
	}
	return s.src[start:s.pos]
}

func (s *bibScanner) skipSpace() {
	for s.pos < len(s.src) && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
}

func (s *bibScanner) consume(c byte) bool {
	if s.pos < len(s.src) && s.src[s.pos] == c {
		s.pos++
		return true
	}
	return false
}

func (s *bibScanner) errorf(format string, args ...any) error {
	line := 1 + strings.Count(s.src[:min(s.pos, len(s.src))], "\n")
	return fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
}

// cleanValue drops grouping braces and collapses whitespace runs.
func cleanValue(v string) string {
	v = strings.NewReplacer("{", "", "}", "").Replace(v)
	return strings.Join(strings.Fields(v), " ")
}
