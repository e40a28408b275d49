// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/pdiddy/pubsum/internal/httputil"
)

var (
	// ErrNoProfile means the author search returned no matching profile.
	// It is transient: the search index may not have the profile yet.
	ErrNoProfile = errors.New("no matching author profile")

	// ErrEmptyName means the caller supplied a blank author name.
	ErrEmptyName = errors.New("author name is empty")
)

// StatusError is a non-200 response from the profile service.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("profile service returned HTTP %d for %s", e.StatusCode, e.URL)
}

// ExhaustedError reports that every fetch attempt failed transiently.
type ExhaustedError struct {
	Author   string
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("failed to fetch publications for %s after %d attempts: %v", e.Author, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// FetchError reports a permanent fetch failure.
type FetchError struct {
	Author string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching publications for %s: %v", e.Author, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsExhausted returns true if err is or wraps an *ExhaustedError.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}

// IsTransient classifies an attempt error as retryable: no profile yet,
// a timeout, a network failure, or a throttled or 5xx response after the
// per-request retry budget. Cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrNoProfile) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return httputil.IsThrottled(se.StatusCode) || se.StatusCode >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue)
}
