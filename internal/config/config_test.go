// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pubsum/pkg/types"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 3, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Backoff)
	assert.Equal(t, 2015, cfg.Filter.StartYear)
	assert.Equal(t, 2020, cfg.Filter.EndYear)
	assert.Equal(t, "Jane Doe", cfg.Session.DefaultAuthor)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pubsum.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fetch:
  max_attempts: 5
  backoff: 250ms
  email: me@example.org
filter:
  start_year: 2010
  end_year: 2012
server:
  request_timeout: 6m
log:
  format: json
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.Backoff)
	assert.Equal(t, "me@example.org", cfg.Fetch.Email)
	assert.Equal(t, 2010, cfg.Filter.StartYear)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 60*time.Second, cfg.Fetch.AttemptTimeout)
	assert.Equal(t, 6*time.Minute, cfg.Server.RequestTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PUBSUM_FETCH_MAX_ATTEMPTS", "4")
	t.Setenv("PUBSUM_CACHE_TTL", "10m")
	t.Setenv("PUBSUM_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("PUBSUM_SERVER_REQUEST_TIMEOUT", "5m")

	v := viper.New()
	BindEnv(v)
	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Fetch.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Server.RequestTimeout)
}

func TestLoad_RejectsRequestTimeoutShorterThanRetryBudget(t *testing.T) {
	t.Setenv("PUBSUM_FETCH_MAX_ATTEMPTS", "4")

	v := viper.New()
	BindEnv(v)
	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.request_timeout (4m0s) is shorter than the fetch retry budget (4m15s)")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *types.Config)
		errMsg string
	}{
		{
			name:   "zero attempts",
			mutate: func(c *types.Config) { c.Fetch.MaxAttempts = 0 },
			errMsg: "fetch.max_attempts must be at least 1",
		},
		{
			name:   "bad base url",
			mutate: func(c *types.Config) { c.Fetch.BaseURL = "not a url" },
			errMsg: "fetch.base_url must be a valid URL",
		},
		{
			name:   "unknown log level",
			mutate: func(c *types.Config) { c.Log.Level = "loud" },
			errMsg: "log.level must be one of",
		},
		{
			name:   "bad email",
			mutate: func(c *types.Config) { c.Fetch.Email = "nobody" },
			errMsg: "fetch.email must be a valid email address",
		},
		{
			name:   "inverted slider bounds",
			mutate: func(c *types.Config) { c.Filter.MaxYear = 1800 },
			errMsg: "filter.max_year must not be less than filter.min_year",
		},
		{
			name:   "inverted default window",
			mutate: func(c *types.Config) { c.Filter.StartYear = 2021 },
			errMsg: "filter.start_year (2021) is after filter.end_year (2020)",
		},
		{
			name:   "default start year below slider",
			mutate: func(c *types.Config) { c.Filter.MinYear = 2016 },
			errMsg: "filter.start_year (2015) must lie within filter.min_year-filter.max_year (2016-2024)",
		},
		{
			name:   "default end year above slider",
			mutate: func(c *types.Config) { c.Filter.MaxYear = 2019 },
			errMsg: "filter.end_year (2020) must lie within filter.min_year-filter.max_year (1900-2019)",
		},
		{
			name:   "request timeout shorter than fetch budget",
			mutate: func(c *types.Config) { c.Server.RequestTimeout = 2 * time.Minute },
			errMsg: "server.request_timeout (2m0s) is shorter than the fetch retry budget (3m10s)",
		},
		{
			name:   "missing user agent",
			mutate: func(c *types.Config) { c.HTTP.UserAgent = "" },
			errMsg: "http.user_agent is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}

	require.NoError(t, Validate(Default()))
}

func TestFetchBudget(t *testing.T) {
	d := Default()
	assert.Equal(t, 190*time.Second, FetchBudget(d.Fetch))
	assert.GreaterOrEqual(t, d.Server.RequestTimeout, FetchBudget(d.Fetch))
	assert.Equal(t, 60*time.Second, FetchBudget(types.FetchConfig{MaxAttempts: 1, AttemptTimeout: time.Minute, Backoff: time.Hour}))
	assert.Zero(t, FetchBudget(types.FetchConfig{}))
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "fetch.max_attempts", fieldPath("Config.Fetch.MaxAttempts"))
	assert.Equal(t, "http.user_agent", fieldPath("Config.HTTP.UserAgent"))
	assert.Equal(t, "fetch.base_url", fieldPath("Config.Fetch.BaseURL"))
	assert.Equal(t, "server.max_upload_bytes", fieldPath("Config.Server.MaxUploadBytes"))
}
