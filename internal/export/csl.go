// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pubsum/pkg/types"
)

const (
	CSLMIME     = "application/x-yaml"
	CSLFileName = "publication_summary.yaml"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-YAML schema so that
// output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID             string    `yaml:"id"`
	Type           string    `yaml:"type"`
	Title          string    `yaml:"title,omitempty"`
	Author         []CSLName `yaml:"author,omitempty"`
	ContainerTitle string    `yaml:"container-title,omitempty"`
	Issued         *CSLDate  `yaml:"issued,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// authorSeparator splits BibTeX-style "A and B" author lists.
var authorSeparator = regexp.MustCompile(`\s+and\s+`)

// CSL writes records as a CSL-YAML list to w.
func CSL(records types.RecordSet, w io.Writer) error {
	items := make([]CSLItem, len(records))
	used := make(map[string]int)
	for i, r := range records {
		items[i] = toCSLItem(r)
		items[i].ID = uniqueID(items[i], used)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(r types.Record) CSLItem {
	item := CSLItem{
		Type:           "article-journal",
		Title:          r.Title,
		ContainerTitle: r.Venue,
	}
	if r.Venue == "" {
		item.Type = "article"
	}
	for _, a := range splitAuthors(r.Authors) {
		item.Author = append(item.Author, parseAuthorName(a))
	}
	if y, ok := r.Year.Int(); ok {
		item.Issued = &CSLDate{DateParts: [][]int{{y}}}
	}
	return item
}

// splitAuthors breaks a free-form author string on " and ".
func splitAuthors(authors string) []string {
	authors = strings.TrimSpace(authors)
	if authors == "" {
		return nil
	}
	var out []string
	for _, a := range authorSeparator.Split(authors, -1) {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

// parseAuthorName splits a name into CSL family/given parts. "Family,
// Given" is split on the comma; otherwise the last token is the family
// name. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}

// uniqueID builds a citation key from the first author's family name and
// the year, adding a letter suffix on collision (doe2020, doe2020b, ...,
// doe2020z) and a numeric one after that (doe2020-27, doe2020-28, ...).
func uniqueID(item CSLItem, used map[string]int) string {
	base := "anon"
	if len(item.Author) > 0 {
		n := item.Author[0]
		name := n.Family
		if name == "" {
			name = n.Literal
		}
		if s := slug(name); s != "" {
			base = s
		}
	}
	if item.Issued != nil {
		base += fmt.Sprintf("%d", item.Issued.DateParts[0][0])
	}
	used[base]++
	switch n := used[base]; {
	case n > 26:
		return fmt.Sprintf("%s-%d", base, n)
	case n > 1:
		return fmt.Sprintf("%s%c", base, 'a'+rune(n-1))
	}
	return base
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
