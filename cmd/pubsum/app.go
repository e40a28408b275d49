// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pdiddy/pubsum/internal/cache"
	"github.com/pdiddy/pubsum/internal/fetch"
	"github.com/pdiddy/pubsum/internal/secrets"
	"github.com/pdiddy/pubsum/internal/session"
	"github.com/pdiddy/pubsum/pkg/types"
)

// newFetcher builds the OpenAlex fetcher from cfg. The contact email comes
// from fetch.email, or from the openalex-email secret when unset.
func newFetcher(cfg types.Config, store secrets.Store, log *slog.Logger, hook fetch.AttemptHook) *fetch.Fetcher {
	fcfg := cfg.Fetch
	fcfg.Email = store.Or(secrets.OpenAlexEmail, fcfg.Email)

	client := &http.Client{Timeout: cfg.HTTP.Timeout}
	src := fetch.NewOpenAlexSource(client, fcfg, cfg.HTTP.UserAgent, log)

	opts := []fetch.Option{
		fetch.WithPolicy(fetch.Policy{MaxAttempts: fcfg.MaxAttempts, Backoff: fcfg.Backoff}),
		fetch.WithAttemptTimeout(fcfg.AttemptTimeout),
		fetch.WithCache(cache.New[string, types.RecordSet](cfg.Cache.TTL, cfg.Cache.MaxEntries)),
		fetch.WithLogger(log),
	}
	if hook != nil {
		opts = append(opts, fetch.WithAttemptHook(hook))
	}
	return fetch.NewFetcher(src, opts...)
}

func newHandlers(cfg types.Config, f session.Fetcher, log *slog.Logger) *session.Handlers {
	return session.NewHandlers(f,
		session.WithYears(cfg.Filter),
		session.WithDefaultAuthor(cfg.Session.DefaultAuthor),
		session.WithUploadCache(cache.New[string, types.RecordSet](cfg.Cache.TTL, cfg.Cache.MaxEntries)),
		session.WithLogger(log),
	)
}

// progressHook prints failed attempts the way the user sees them while
// the retry loop backs off.
func progressHook(w io.Writer, maxAttempts int) fetch.AttemptHook {
	return func(attempt int, err error) {
		if err != nil && attempt < maxAttempts && fetch.IsTransient(err) {
			fmt.Fprintf(w, "warning: attempt %d/%d failed: %v (retrying)\n", attempt, maxAttempts, err)
		}
	}
}

// signalContext is cancelled on Ctrl-C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// printNotices writes notices one per line and reports whether any was an
// error.
func printNotices(w io.Writer, notices []session.Notice) bool {
	for _, n := range notices {
		fmt.Fprintln(w, n.String())
	}
	return session.HasError(notices)
}
