// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubsum/internal/config"
	"github.com/pdiddy/pubsum/internal/fetch"
	"github.com/pdiddy/pubsum/internal/logging"
	"github.com/pdiddy/pubsum/internal/secrets"
	"github.com/pdiddy/pubsum/internal/session"
	"github.com/pdiddy/pubsum/pkg/types"
)

func TestPrintNotices(t *testing.T) {
	var buf bytes.Buffer
	failed := printNotices(&buf, []session.Notice{
		{Level: session.LevelWarning, Message: "years clamped"},
		{Level: session.LevelInfo, Message: "1 of 2"},
	})
	assert.False(t, failed)
	assert.Equal(t, "warning: years clamped\ninfo: 1 of 2\n", buf.String())

	assert.True(t, printNotices(&buf, []session.Notice{{Level: session.LevelError, Message: "x"}}))
}

func TestProgressHook(t *testing.T) {
	var buf bytes.Buffer
	hook := progressHook(&buf, 3)
	hook(1, fetch.ErrNoProfile)
	hook(2, nil)
	hook(3, fetch.ErrNoProfile)
	hook(1, errors.New("permanent"))
	assert.Equal(t, "warning: attempt 1/3 failed: no matching author profile (retrying)\n", buf.String())
}

func TestWriteExport(t *testing.T) {
	h := newHandlers(config.Default(), nil, logging.Discard())
	path := filepath.Join(t.TempDir(), "out.docx")
	var buf bytes.Buffer

	ok := writeExport(&buf, path, h.ExportDocument, types.RecordSet{{Title: "T", Year: types.YearOf(2020)}})
	require.True(t, ok)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
	assert.Contains(t, buf.String(), "saved 1 publications to "+path)

	assert.False(t, writeExport(&buf, filepath.Join(t.TempDir(), "missing", "out.docx"), h.ExportDocument, nil))
}

func TestNewFetcher_EmailFromSecrets(t *testing.T) {
	cfg := config.Default()
	f := newFetcher(cfg, secrets.Store{secrets.OpenAlexEmail: "me@example.org"}, logging.Discard(), nil)
	assert.NotNil(t, f)
}
