// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubsum/internal/cache"
	"github.com/pdiddy/pubsum/pkg/types"
)

// scriptedSource returns the next scripted result on each call.
type scriptedSource struct {
	mu      sync.Mutex
	results []scripted
	calls   int
}

type scripted struct {
	records types.RecordSet
	err     error
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) AuthorPublications(_ context.Context, _ string) (types.RecordSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i].records, s.results[i].err
}

func (s *scriptedSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

var onePub = types.RecordSet{{Title: "Paper", Year: types.YearOf(2019), Venue: "J", Authors: "Jane Doe"}}

func fastPolicy() Option { return WithPolicy(Policy{MaxAttempts: 3}) }

func TestFetch_SucceedsAfterTransientFailures(t *testing.T) {
	src := &scriptedSource{results: []scripted{
		{err: ErrNoProfile},
		{err: &StatusError{StatusCode: 503}},
		{records: onePub},
	}}
	var attempts []int
	f := NewFetcher(src, fastPolicy(), WithAttemptHook(func(a int, _ error) { attempts = append(attempts, a) }))

	got, err := f.Fetch(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, onePub, got)
	assert.Equal(t, 3, src.Calls())
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestFetch_ExhaustedReturnsEmptySet(t *testing.T) {
	src := &scriptedSource{results: []scripted{{err: ErrNoProfile}}}
	f := NewFetcher(src, fastPolicy())

	got, err := f.Fetch(context.Background(), "Nobody Known")
	require.Error(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.True(t, IsExhausted(err))

	var ee *ExhaustedError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 3, ee.Attempts)
	assert.Equal(t, "Nobody Known", ee.Author)
	assert.ErrorIs(t, err, ErrNoProfile)
	assert.Equal(t, 3, src.Calls())
}

func TestFetch_PermanentFailureStopsEarly(t *testing.T) {
	src := &scriptedSource{results: []scripted{{err: &StatusError{StatusCode: 400}}}}
	f := NewFetcher(src, fastPolicy())

	got, err := f.Fetch(context.Background(), "Jane Doe")
	require.Error(t, err)
	assert.Empty(t, got)
	assert.False(t, IsExhausted(err))

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, src.Calls())
}

func TestFetch_EmptyName(t *testing.T) {
	src := &scriptedSource{results: []scripted{{records: onePub}}}
	f := NewFetcher(src)

	got, err := f.Fetch(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyName)
	assert.Empty(t, got)
	assert.Zero(t, src.Calls())
}

func TestFetch_NilResultBecomesEmptySet(t *testing.T) {
	src := &scriptedSource{results: []scripted{{}}}
	f := NewFetcher(src)

	got, err := f.Fetch(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFetch_CachesNonEmptyResults(t *testing.T) {
	src := &scriptedSource{results: []scripted{{records: onePub}}}
	c := cache.New[string, types.RecordSet](time.Hour, 8)
	f := NewFetcher(src, WithCache(c))

	_, err := f.Fetch(context.Background(), "Jane Doe")
	require.NoError(t, err)
	got, err := f.Fetch(context.Background(), "  jane   DOE ")
	require.NoError(t, err)
	assert.Equal(t, onePub, got)
	assert.Equal(t, 1, src.Calls())

	// Mutating a returned set must not leak into the cache.
	got[0].Title = "changed"
	again, _ := f.Fetch(context.Background(), "Jane Doe")
	assert.Equal(t, "Paper", again[0].Title)

	f.Invalidate("JANE DOE")
	_, err = f.Fetch(context.Background(), "Jane Doe")
	require.NoError(t, err)
	assert.Equal(t, 2, src.Calls())
}

func TestFetch_EmptyResultNotCached(t *testing.T) {
	src := &scriptedSource{results: []scripted{{records: types.RecordSet{}}}}
	c := cache.New[string, types.RecordSet](time.Hour, 8)
	f := NewFetcher(src, WithCache(c))

	f.Fetch(context.Background(), "Jane Doe")
	f.Fetch(context.Background(), "Jane Doe")
	assert.Equal(t, 2, src.Calls())
	assert.Zero(t, c.Len())
}

func TestFetch_CancelledContext(t *testing.T) {
	src := &scriptedSource{results: []scripted{{err: context.Canceled}}}
	f := NewFetcher(src, fastPolicy())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.Fetch(ctx, "Jane Doe")
	require.Error(t, err)
	assert.False(t, IsExhausted(err))
	assert.Equal(t, 1, src.Calls())
}

func TestAuthorKey(t *testing.T) {
	assert.Equal(t, "jane doe", AuthorKey("  Jane\tDOE "))
	assert.Equal(t, "", AuthorKey("   "))
}
