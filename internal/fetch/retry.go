// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"time"
)

// Status tags the result of a bounded retry.
type Status int

const (
	// Succeeded means an attempt returned without error.
	Succeeded Status = iota
	// Exhausted means every attempt failed with a transient error.
	Exhausted
	// Failed means an attempt failed permanently or the context ended.
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Policy bounds a retry loop.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff is the fixed wait between attempts.
	Backoff time.Duration
}

// DefaultPolicy is three attempts five seconds apart.
var DefaultPolicy = Policy{MaxAttempts: 3, Backoff: 5 * time.Second}

// Outcome is the tagged result of Retry.
type Outcome[T any] struct {
	Value    T
	Status   Status
	Attempts int
	// Err is the last attempt's error, or the context error when the
	// caller's context ended. Nil on success.
	Err error
}

// Retry calls op until it succeeds, returns an error transient rejects,
// or MaxAttempts attempts have been made, waiting Backoff between
// attempts. Attempts are numbered from 1. A cancelled context stops the
// loop with Status Failed.
func Retry[T any](ctx context.Context, p Policy, transient func(error) bool, op func(ctx context.Context, attempt int) (T, error)) Outcome[T] {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var last error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := op(ctx, attempt)
		if err == nil {
			return Outcome[T]{Value: v, Status: Succeeded, Attempts: attempt}
		}
		last = err

		if ctx.Err() != nil {
			return Outcome[T]{Status: Failed, Attempts: attempt, Err: ctx.Err()}
		}
		if !transient(err) {
			return Outcome[T]{Status: Failed, Attempts: attempt, Err: err}
		}
		if attempt == maxAttempts {
			break
		}

		if p.Backoff > 0 {
			timer := time.NewTimer(p.Backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return Outcome[T]{Status: Failed, Attempts: attempt, Err: ctx.Err()}
			case <-timer.C:
			}
		}
	}
	return Outcome[T]{Status: Exhausted, Attempts: maxAttempts, Err: last}
}
