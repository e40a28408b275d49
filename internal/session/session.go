// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session implements the interactive shell's event handlers.
// Session values (author name, uploaded dataset, current publications,
// year bounds) live in an explicit State that each handler takes and
// returns; handlers report outcomes as Notices instead of errors.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pdiddy/pubsum/internal/cache"
	"github.com/pdiddy/pubsum/internal/export"
	"github.com/pdiddy/pubsum/internal/fetch"
	"github.com/pdiddy/pubsum/internal/filter"
	"github.com/pdiddy/pubsum/internal/logging"
	"github.com/pdiddy/pubsum/internal/normalize"
	"github.com/pdiddy/pubsum/pkg/types"
)

// Source selects where GetPublications looks.
type Source string

const (
	// SourceDataset searches the uploaded dataset by author name.
	SourceDataset Source = "dataset"
	// SourceExternal queries the external profile service.
	SourceExternal Source = "external"
)

// ParseSource accepts "dataset" or "external", case-insensitively.
// An empty string selects SourceDataset.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case "", SourceDataset:
		return SourceDataset, nil
	case SourceExternal:
		return SourceExternal, nil
	default:
		return "", fmt.Errorf("unknown source %q: want dataset or external", s)
	}
}

func (s Source) label() string {
	if s == SourceExternal {
		return "external search"
	}
	return "uploaded dataset"
}

// State is one user's session.
type State struct {
	AuthorName string `json:"author_name"`
	// Dataset is the most recent successful upload.
	Dataset types.RecordSet `json:"dataset"`
	// Publications is the most recent non-empty author search result.
	Publications    types.RecordSet `json:"publications"`
	HasPublications bool            `json:"has_publications"`
	StartYear       int             `json:"start_year"`
	EndYear         int             `json:"end_year"`
}

// Fetcher is the external lookup used for SourceExternal.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (types.RecordSet, error)
	Invalidate(name string)
}

// Handlers holds the collaborators and defaults shared by all sessions.
type Handlers struct {
	fetcher       Fetcher
	uploads       *cache.Cache[string, types.RecordSet]
	years         types.FilterConfig
	defaultAuthor string
	log           *slog.Logger
}

// Option configures Handlers.
type Option func(*Handlers)

// WithUploadCache reuses parsed uploads keyed by normalize.ContentKey.
func WithUploadCache(c *cache.Cache[string, types.RecordSet]) Option {
	return func(h *Handlers) { h.uploads = c }
}

// WithYears sets the slider bounds and default selection.
func WithYears(cfg types.FilterConfig) Option {
	return func(h *Handlers) { h.years = cfg }
}

// WithDefaultAuthor sets the pre-filled author name.
func WithDefaultAuthor(name string) Option {
	return func(h *Handlers) { h.defaultAuthor = name }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handlers) { h.log = l }
}

// DefaultYears is the 1900–2024 slider preset to 2015–2020.
var DefaultYears = types.FilterConfig{MinYear: 1900, MaxYear: 2024, StartYear: 2015, EndYear: 2020}

// NewHandlers returns handlers backed by f. f may be nil when only
// dataset searches are used.
func NewHandlers(f Fetcher, opts ...Option) *Handlers {
	h := &Handlers{
		fetcher:       f,
		years:         DefaultYears,
		defaultAuthor: "Jane Doe",
		log:           logging.Discard(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewState returns a fresh session with the default author and years.
func (h *Handlers) NewState() State {
	return State{
		AuthorName: h.defaultAuthor,
		StartYear:  h.years.StartYear,
		EndYear:    h.years.EndYear,
	}
}

// Upload parses an uploaded file selected by its extension. On success
// the records become st.Dataset; on any failure st is returned unchanged
// with an error notice.
func (h *Handlers) Upload(ctx context.Context, st State, filename string, data []byte) (State, []Notice) {
	format, err := normalize.FormatFromFilename(filename)
	if err != nil {
		h.log.WarnContext(ctx, "rejected upload", "file", filename, "error", err)
		return st, []Notice{errorf("%v", err)}
	}

	key := normalize.ContentKey(format, data)
	records, ok := h.uploads.Get(key)
	if ok {
		h.log.DebugContext(ctx, "upload cache hit", "file", filename, "key", key)
	} else {
		records, err = normalize.Normalize(data, format)
		if err != nil {
			h.log.WarnContext(ctx, "upload parse failed", "file", filename, "error", err)
			return st, []Notice{errorf("could not read %s: %v", filename, err)}
		}
		h.uploads.Set(key, records.Clone())
	}

	st.Dataset = records.Clone()
	h.log.InfoContext(ctx, "uploaded dataset", "file", filename, "format", format, "records", len(records))

	if len(records) == 0 {
		return st, []Notice{warnf("%s contains no publication records", filename)}
	}
	msg := fmt.Sprintf("loaded %d records from %s", len(records), filename)
	if lo, hi, ok := filter.YearSpan(records); ok {
		msg += fmt.Sprintf(" (years %d-%d)", lo, hi)
	}
	return st, []Notice{successf("%s", msg)}
}

// GetPublications searches for author in the chosen source. A non-empty
// result replaces st.Publications; an empty result leaves them untouched
// and adds a warning. The author name is remembered either way.
func (h *Handlers) GetPublications(ctx context.Context, st State, author string, source Source) (State, []Notice) {
	author = strings.TrimSpace(author)
	if author == "" {
		return st, []Notice{errorf("enter an author name")}
	}
	st.AuthorName = author

	var (
		records types.RecordSet
		notices []Notice
	)
	switch source {
	case SourceExternal:
		records, notices = h.fetchExternal(ctx, author)
	default:
		source = SourceDataset
		var err error
		records, err = filter.ByAuthor(st.Dataset, author)
		if err != nil {
			notices = append(notices, noMatchNotice(err))
		}
	}

	if len(records) == 0 {
		return st, notices
	}
	st.Publications = records.Clone()
	st.HasPublications = true
	h.log.InfoContext(ctx, "publications selected", "author", author, "source", source, "records", len(records))
	return st, append(notices, successf("found %d publications for %s (from %s)", len(records), author, source.label()))
}

// RefreshPublications drops any cached external result for author and
// searches the external source again.
func (h *Handlers) RefreshPublications(ctx context.Context, st State, author string) (State, []Notice) {
	if h.fetcher != nil {
		h.fetcher.Invalidate(author)
	}
	return h.GetPublications(ctx, st, author, SourceExternal)
}

func (h *Handlers) fetchExternal(ctx context.Context, author string) (types.RecordSet, []Notice) {
	if h.fetcher == nil {
		return nil, []Notice{errorf("external search is not configured")}
	}
	records, err := h.fetcher.Fetch(ctx, author)
	switch {
	case fetch.IsExhausted(err):
		return nil, []Notice{
			warnf("failed to fetch data from the external profile service, try again later"),
			warnf("no publications found for %s", author),
		}
	case err != nil:
		return nil, []Notice{
			errorf("%v", err),
			warnf("no publications found for %s", author),
		}
	case len(records) == 0:
		return nil, []Notice{noMatchNotice(&filter.NoMatchError{Author: author, Reason: filter.ReasonNoPublications})}
	}
	return records, nil
}

func noMatchNotice(err error) Notice {
	var nm *filter.NoMatchError
	if errors.As(err, &nm) {
		return warnf("%s", nm.Error())
	}
	return warnf("%v", err)
}

// FilterYears intersects [start, end] with the slider range, stores the
// result in the state and returns the current publications within it. A
// request lying wholly outside the slider range selects nothing.
func (h *Handlers) FilterYears(st State, start, end int) (State, types.RecordSet, []Notice) {
	var notices []Notice
	cs, ce := max(start, h.years.MinYear), min(end, h.years.MaxYear)
	if cs != start || ce != end {
		notices = append(notices, warnf("years must lie within %d-%d; using %d-%d",
			h.years.MinYear, h.years.MaxYear, cs, ce))
	}
	st.StartYear, st.EndYear = cs, ce

	if !st.HasPublications {
		return st, types.RecordSet{}, append(notices, infof("get publications before filtering by year"))
	}
	if cs > ce {
		notices = append(notices, warnf("start year %d is after end year %d; no publications match", cs, ce))
	}
	out := filter.ByYear(st.Publications, cs, ce)
	return st, out, append(notices, infof("%d of %d publications fall within %d-%d", len(out), len(st.Publications), cs, ce))
}

// Download is an export ready to be handed to the user.
type Download struct {
	FileName string
	MIME     string
	Data     []byte
}

// ExportSpreadsheet renders records as an .xlsx workbook.
func (h *Handlers) ExportSpreadsheet(records types.RecordSet) (Download, []Notice) {
	data, err := export.Spreadsheet(records)
	return h.download(export.SpreadsheetFileName, export.SpreadsheetMIME, data, err, len(records))
}

// ExportDocument renders records as a .docx summary.
func (h *Handlers) ExportDocument(records types.RecordSet) (Download, []Notice) {
	data, err := export.Document(records)
	return h.download(export.DocumentFileName, export.DocumentMIME, data, err, len(records))
}

// ExportCSL renders records as CSL-YAML.
func (h *Handlers) ExportCSL(records types.RecordSet) (Download, []Notice) {
	var buf bytes.Buffer
	err := export.CSL(records, &buf)
	return h.download(export.CSLFileName, export.CSLMIME, buf.Bytes(), err, len(records))
}

func (h *Handlers) download(name, mime string, data []byte, err error, n int) (Download, []Notice) {
	if err != nil {
		h.log.Error("export failed", "file", name, "error", err)
		return Download{}, []Notice{errorf("could not create %s: %v", name, err)}
	}
	h.log.Info("exported", "file", name, "records", n, "bytes", len(data))
	return Download{FileName: name, MIME: mime, Data: data},
		[]Notice{successf("saved %d publications to %s", n, name)}
}
