// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  Store
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, OpenAlexEmail, "  me@example.org \n")
				return dir
			},
			want: Store{OpenAlexEmail: "me@example.org"},
		},
		{
			name: "missing directory is empty",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "absent")
			},
			want: Store{},
		},
		{
			name: "skips blanks, dotfiles and subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "blank", " \n\t")
				writeFile(t, dir, ".gitkeep", "x")
				writeFile(t, dir, OpenAlexEmail, "a@b.org")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
				return dir
			},
			want: Store{OpenAlexEmail: "a@b.org"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.setup(t), nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_UnreadableFileWarns(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root can read mode 000 files")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good", "value")
	bad := filepath.Join(dir, "bad")
	require.NoError(t, os.WriteFile(bad, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(bad, 0o644) })

	var warn bytes.Buffer
	got, err := Load(dir, &warn)
	require.NoError(t, err)
	assert.Equal(t, Store{"good": "value"}, got)
	assert.Contains(t, warn.String(), "warning: could not read secret bad")
}

func TestStore_GetPrefersEnv(t *testing.T) {
	s := Store{OpenAlexEmail: "file@example.org"}
	assert.Equal(t, "file@example.org", s.Get(OpenAlexEmail))

	t.Setenv("PUBSUM_OPENALEX_EMAIL", "env@example.org")
	assert.Equal(t, "env@example.org", s.Get(OpenAlexEmail))
	assert.Equal(t, "flag@example.org", s.Or(OpenAlexEmail, "flag@example.org"))
	assert.Equal(t, "env@example.org", s.Or(OpenAlexEmail, ""))
}

func TestStore_Keys(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Store{"b": "2", "a": "1"}.Keys())
	assert.Empty(t, Store{}.Keys())
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "PUBSUM_OPENALEX_EMAIL", EnvName("openalex-email"))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
