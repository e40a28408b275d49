// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/pubsum/internal/httputil"
	"github.com/pdiddy/pubsum/pkg/types"
)

// DefaultOpenAlexBase is the OpenAlex API root.
const DefaultOpenAlexBase = "https://api.openalex.org"

const (
	openAlexPageSize = 200
	defaultMaxWorks  = 500
	worksSelect      = "id,title,display_name,publication_year,primary_location,authorships"
)

// OpenAlexSource looks up an author profile in OpenAlex and lists the
// works attributed to it. One call is one fetch attempt.
type OpenAlexSource struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
	// Email is sent as mailto parameter for polite pool access.
	Email    string
	MaxWorks int
	Limiter  *rate.Limiter
	Logger   *slog.Logger
}

// NewOpenAlexSource builds a source from the fetch configuration.
func NewOpenAlexSource(client *http.Client, cfg types.FetchConfig, userAgent string, log *slog.Logger) *OpenAlexSource {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultOpenAlexBase
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return &OpenAlexSource{
		Client:    client,
		BaseURL:   strings.TrimRight(base, "/"),
		UserAgent: userAgent,
		Email:     cfg.Email,
		MaxWorks:  cfg.MaxWorks,
		Limiter:   limiter,
		Logger:    log,
	}
}

// Name returns the source identifier.
func (s *OpenAlexSource) Name() string { return "openalex" }

// AuthorPublications searches for name, takes the first matching profile
// and returns its works in the uniform schema.
func (s *OpenAlexSource) AuthorPublications(ctx context.Context, name string) (types.RecordSet, error) {
	author, err := s.findAuthor(ctx, name)
	if err != nil {
		return nil, err
	}
	s.logger().DebugContext(ctx, "matched author profile",
		"query", name, "profile", author.ID, "display_name", author.DisplayName, "works_count", author.WorksCount)

	works, err := s.listWorks(ctx, shortID(author.ID))
	if err != nil {
		return nil, err
	}
	records := make(types.RecordSet, 0, len(works))
	for _, w := range works {
		records = append(records, workToRecord(w))
	}
	return records, nil
}

func (s *OpenAlexSource) findAuthor(ctx context.Context, name string) (openAlexAuthor, error) {
	params := url.Values{
		"search":   {name},
		"per_page": {"1"},
	}
	var resp openAlexAuthorsResponse
	if err := s.getJSON(ctx, "/authors", params, &resp); err != nil {
		return openAlexAuthor{}, err
	}
	if len(resp.Results) == 0 {
		return openAlexAuthor{}, fmt.Errorf("searching %q: %w", name, ErrNoProfile)
	}
	return resp.Results[0], nil
}

func (s *OpenAlexSource) listWorks(ctx context.Context, authorID string) ([]openAlexWork, error) {
	maxWorks := s.MaxWorks
	if maxWorks <= 0 {
		maxWorks = defaultMaxWorks
	}

	var works []openAlexWork
	cursor := "*"
	for cursor != "" && len(works) < maxWorks {
		params := url.Values{
			"filter":   {"author.id:" + authorID},
			"per_page": {strconv.Itoa(min(openAlexPageSize, maxWorks-len(works)))},
			"cursor":   {cursor},
			"select":   {worksSelect},
		}
		var page openAlexWorksResponse
		if err := s.getJSON(ctx, "/works", params, &page); err != nil {
			return nil, err
		}
		if len(page.Results) == 0 {
			break
		}
		works = append(works, page.Results...)
		cursor = page.Meta.NextCursor
	}
	if len(works) > maxWorks {
		works = works[:maxWorks]
	}
	return works, nil
}

func (s *OpenAlexSource) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if s.Email != "" {
		params.Set("mailto", s.Email)
	}
	reqURL := s.BaseURL + path + "?" + params.Encode()

	if s.Limiter != nil {
		if err := s.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, 0, s.logger())
	if err != nil {
		return fmt.Errorf("OpenAlex request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, URL: s.BaseURL + path}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return nil
}

func (s *OpenAlexSource) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s.Logger
}

// workToRecord maps an OpenAlex work into the uniform schema. Missing
// sub-fields become empty text.
func workToRecord(w openAlexWork) types.Record {
	r := types.Record{Title: w.Title}
	if r.Title == "" {
		r.Title = w.DisplayName
	}
	if w.PublicationYear != nil {
		r.Year = types.YearOf(*w.PublicationYear)
	}
	if w.PrimaryLocation != nil && w.PrimaryLocation.Source != nil {
		r.Venue = w.PrimaryLocation.Source.DisplayName
	}
	var names []string
	for _, a := range w.Authorships {
		if a.Author.DisplayName != "" {
			names = append(names, a.Author.DisplayName)
		}
	}
	r.Authors = strings.Join(names, " and ")
	return r
}

// shortID strips the https://openalex.org/ prefix from an entity ID.
func shortID(id string) string {
	return strings.TrimPrefix(id, "https://openalex.org/")
}

// OpenAlex API JSON structures.
type openAlexMeta struct {
	Count      int    `json:"count"`
	PerPage    int    `json:"per_page"`
	NextCursor string `json:"next_cursor"`
}

type openAlexAuthorsResponse struct {
	Meta    openAlexMeta     `json:"meta"`
	Results []openAlexAuthor `json:"results"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	WorksCount  int    `json:"works_count"`
}

type openAlexWorksResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DisplayName     string               `json:"display_name"`
	PublicationYear *int                 `json:"publication_year"`
	PrimaryLocation *openAlexLocation    `json:"primary_location"`
	Authorships     []openAlexAuthorship `json:"authorships"`
}

type openAlexLocation struct {
	Source *openAlexVenue `json:"source"`
}

type openAlexVenue struct {
	DisplayName string `json:"display_name"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}
