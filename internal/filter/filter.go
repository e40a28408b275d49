// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter narrows record sets by publication year and author name.
// Every function returns a new RecordSet and leaves its input untouched, so
// a source set can be re-filtered with different bounds.
package filter

import (
	"fmt"
	"strings"

	"github.com/pdiddy/pubsum/pkg/types"
)

// Reason explains why a name search produced no records.
type Reason string

const (
	// ReasonEmptyDataset means there was nothing to search.
	ReasonEmptyDataset Reason = "empty-dataset"
	// ReasonNoAuthorMatch means the dataset had records but none matched.
	ReasonNoAuthorMatch Reason = "no-author-match"
	// ReasonNoPublications means an author profile exists with zero publications.
	ReasonNoPublications Reason = "no-publications"
)

// NoMatchError reports a name search that yielded zero records. Callers
// treat it as a warning, not a failure.
type NoMatchError struct {
	Author string
	Reason Reason
}

func (e *NoMatchError) Error() string {
	switch e.Reason {
	case ReasonEmptyDataset:
		return fmt.Sprintf("no publications found for %s: the uploaded dataset is empty", e.Author)
	case ReasonNoPublications:
		return fmt.Sprintf("no publications found for %s: the author profile lists none", e.Author)
	default:
		return fmt.Sprintf("no publications found for %s in the uploaded dataset", e.Author)
	}
}

// ByYear returns the records whose year lies in [start, end] inclusive.
// Records with a missing year are never included. start > end yields an
// empty set.
func ByYear(records types.RecordSet, start, end int) types.RecordSet {
	out := types.RecordSet{}
	if start > end {
		return out
	}
	for _, r := range records {
		y, ok := r.Year.Int()
		if !ok {
			continue
		}
		if y >= start && y <= end {
			out = append(out, r)
		}
	}
	return out
}

// ByAuthor returns the records whose authors text contains name,
// case-insensitively. Zero matches return a *NoMatchError alongside an
// empty set.
func ByAuthor(records types.RecordSet, name string) (types.RecordSet, error) {
	if len(records) == 0 {
		return types.RecordSet{}, &NoMatchError{Author: name, Reason: ReasonEmptyDataset}
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	out := types.RecordSet{}
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Authors), needle) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return out, &NoMatchError{Author: name, Reason: ReasonNoAuthorMatch}
	}
	return out, nil
}

// YearSpan returns the smallest and largest valid year in records.
// ok is false when no record has a year.
func YearSpan(records types.RecordSet) (lo, hi int, ok bool) {
	for _, r := range records {
		y, valid := r.Year.Int()
		if !valid {
			continue
		}
		if !ok || y < lo {
			lo = y
		}
		if !ok || y > hi {
			hi = y
		}
		ok = true
	}
	return lo, hi, ok
}
