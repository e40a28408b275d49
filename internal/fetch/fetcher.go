// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves an author's publications from an external
// academic-profile service and maps them into the uniform record schema.
// A Source performs one attempt; Fetcher wraps it in a bounded retry loop
// with a fixed backoff and an optional result cache.
package fetch

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/pdiddy/pubsum/internal/cache"
	"github.com/pdiddy/pubsum/pkg/types"
)

// Source retrieves the publications of the first profile matching name.
// Each call is a single attempt.
type Source interface {
	Name() string
	AuthorPublications(ctx context.Context, name string) (types.RecordSet, error)
}

// AttemptHook observes each attempt; err is nil on success.
type AttemptHook func(attempt int, err error)

// DefaultAttemptTimeout caps one attempt including its throttling retries.
const DefaultAttemptTimeout = 60 * time.Second

// Fetcher retrieves publications with bounded retries.
type Fetcher struct {
	source         Source
	policy         Policy
	attemptTimeout time.Duration
	cache          *cache.Cache[string, types.RecordSet]
	log            *slog.Logger
	hook           AttemptHook
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithPolicy sets the retry policy.
func WithPolicy(p Policy) Option {
	return func(f *Fetcher) { f.policy = p }
}

// WithAttemptTimeout sets the per-attempt deadline.
func WithAttemptTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.attemptTimeout = d }
}

// WithCache enables result caching keyed by AuthorKey.
func WithCache(c *cache.Cache[string, types.RecordSet]) Option {
	return func(f *Fetcher) { f.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.log = l }
}

// WithAttemptHook registers a per-attempt observer (metrics).
func WithAttemptHook(h AttemptHook) Option {
	return func(f *Fetcher) { f.hook = h }
}

// NewFetcher wraps src with DefaultPolicy and DefaultAttemptTimeout.
func NewFetcher(src Source, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:         src,
		policy:         DefaultPolicy,
		attemptTimeout: DefaultAttemptTimeout,
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// AuthorKey normalizes an author name for cache lookups: case and
// whitespace differences map to the same key.
func AuthorKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Fetch returns the publications of the first profile matching name.
// It never returns a nil set. When every attempt fails transiently it
// returns an empty set and an *ExhaustedError; a permanent failure
// returns an empty set and a *FetchError. Only successful, non-empty
// results are cached.
func (f *Fetcher) Fetch(ctx context.Context, name string) (types.RecordSet, error) {
	key := AuthorKey(name)
	if key == "" {
		return types.RecordSet{}, &FetchError{Author: name, Err: ErrEmptyName}
	}
	if cached, ok := f.cache.Get(key); ok {
		f.log.DebugContext(ctx, "fetch cache hit", "author", name, "records", len(cached))
		return cached.Clone(), nil
	}

	outcome := Retry(ctx, f.policy, IsTransient, func(ctx context.Context, attempt int) (types.RecordSet, error) {
		actx, cancel := context.WithTimeout(ctx, f.attemptTimeout)
		defer cancel()

		records, err := f.source.AuthorPublications(actx, name)
		if f.hook != nil {
			f.hook(attempt, err)
		}
		if err != nil {
			f.log.WarnContext(ctx, "fetch attempt failed",
				"source", f.source.Name(), "author", name,
				"attempt", attempt, "max_attempts", f.policy.MaxAttempts,
				"transient", IsTransient(err), "error", err)
		}
		return records, err
	})

	switch outcome.Status {
	case Succeeded:
		records := outcome.Value
		if records == nil {
			records = types.RecordSet{}
		}
		f.log.InfoContext(ctx, "fetched publications",
			"source", f.source.Name(), "author", name,
			"records", len(records), "attempts", outcome.Attempts)
		if len(records) > 0 {
			f.cache.Set(key, records.Clone())
		}
		return records, nil
	case Exhausted:
		return types.RecordSet{}, &ExhaustedError{Author: name, Attempts: outcome.Attempts, Last: outcome.Err}
	default:
		return types.RecordSet{}, &FetchError{Author: name, Err: outcome.Err}
	}
}

// Invalidate drops any cached result for name so the next Fetch goes to
// the source.
func (f *Fetcher) Invalidate(name string) {
	f.cache.Invalidate(AuthorKey(name))
}
