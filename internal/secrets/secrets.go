// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets reads credentials that should stay out of the config
// file. Each file in the secrets directory holds one value: the filename
// is the key and the trimmed contents are the value. Environment
// variables named PUBSUM_<KEY> override the files.
//
// Known keys: openalex-email.
package secrets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OpenAlexEmail identifies the contact address sent to OpenAlex.
const OpenAlexEmail = "openalex-email"

// DefaultDir is where the CLI looks for secret files.
const DefaultDir = ".secrets/"

// Store holds loaded secret values by key.
type Store map[string]string

// Load reads every regular, non-hidden file in dir. A missing directory
// yields an empty store. Unreadable files are reported on warn and skipped.
func Load(dir string, warn io.Writer) (Store, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Store{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	store := make(Store)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if warn != nil {
				fmt.Fprintf(warn, "warning: could not read secret %s: %v\n", name, err)
			}
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			store[name] = value
		}
	}
	return store, nil
}

// EnvName maps a key to its environment override, e.g.
// openalex-email becomes PUBSUM_OPENALEX_EMAIL.
func EnvName(key string) string {
	return "PUBSUM_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

// Get returns the value for key, preferring a non-empty environment
// override over the loaded file.
func (s Store) Get(key string) string {
	if v := strings.TrimSpace(os.Getenv(EnvName(key))); v != "" {
		return v
	}
	return s[key]
}

// Or returns explicit when set, else the stored value for key.
func (s Store) Or(key, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return s.Get(key)
}

// Keys lists the loaded keys in sorted order, never the values.
func (s Store) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
