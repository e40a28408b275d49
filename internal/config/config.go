// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads tool settings from defaults, an optional
// pubsum.yaml, and PUBSUM_* environment variables, then validates them.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubsum/pkg/types"
)

// EnvPrefix prefixes every environment override, e.g. PUBSUM_FETCH_MAX_ATTEMPTS.
const EnvPrefix = "PUBSUM"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in configuration.
func Default() types.Config {
	return types.Config{
		HTTP: types.HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "pubsum/0.1",
		},
		Fetch: types.FetchConfig{
			BaseURL:        "https://api.openalex.org",
			MaxAttempts:    3,
			Backoff:        5 * time.Second,
			AttemptTimeout: 60 * time.Second,
			RateLimit:      10,
			MaxWorks:       500,
		},
		Filter: types.FilterConfig{
			MinYear:   1900,
			MaxYear:   2024,
			StartYear: 2015,
			EndYear:   2020,
		},
		Session: types.SessionConfig{DefaultAuthor: "Jane Doe"},
		Cache:   types.CacheConfig{TTL: time.Hour, MaxEntries: 64},
		Server: types.ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 4 * time.Minute,
			MaxUploadBytes: 10 << 20,
		},
		Log: types.LogConfig{Level: "info", Format: "text"},
	}
}

// SetDefaults registers every key of Default on v so that environment
// variables bind even when no config file is present.
func SetDefaults(v *viper.Viper) {
	d := Default()
	defaults := map[string]any{
		"http.timeout":    d.HTTP.Timeout,
		"http.user_agent": d.HTTP.UserAgent,

		"fetch.base_url":        d.Fetch.BaseURL,
		"fetch.max_attempts":    d.Fetch.MaxAttempts,
		"fetch.backoff":         d.Fetch.Backoff,
		"fetch.attempt_timeout": d.Fetch.AttemptTimeout,
		"fetch.rate_limit":      d.Fetch.RateLimit,
		"fetch.max_works":       d.Fetch.MaxWorks,
		"fetch.email":           d.Fetch.Email,

		"filter.min_year":   d.Filter.MinYear,
		"filter.max_year":   d.Filter.MaxYear,
		"filter.start_year": d.Filter.StartYear,
		"filter.end_year":   d.Filter.EndYear,

		"session.default_author": d.Session.DefaultAuthor,

		"cache.ttl":         d.Cache.TTL,
		"cache.max_entries": d.Cache.MaxEntries,

		"server.addr":             d.Server.Addr,
		"server.request_timeout":  d.Server.RequestTimeout,
		"server.max_upload_bytes": d.Server.MaxUploadBytes,

		"log.level":  d.Log.Level,
		"log.format": d.Log.Format,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// BindEnv enables PUBSUM_* overrides with dots mapped to underscores.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it. Callers set up config
// files and environment binding on v first; Load adds the defaults.
func Load(v *viper.Viper) (types.Config, error) {
	SetDefaults(v)

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints, the filter year window and that a
// server request can outlast a full fetch retry budget.
func Validate(cfg types.Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationErrors(err)
	}

	var msgs []string
	f := cfg.Filter
	if f.StartYear > f.EndYear {
		msgs = append(msgs, fmt.Sprintf("filter.start_year (%d) is after filter.end_year (%d)", f.StartYear, f.EndYear))
	}
	if f.StartYear < f.MinYear || f.StartYear > f.MaxYear {
		msgs = append(msgs, fmt.Sprintf("filter.start_year (%d) must lie within filter.min_year-filter.max_year (%d-%d)", f.StartYear, f.MinYear, f.MaxYear))
	}
	if f.EndYear < f.MinYear || f.EndYear > f.MaxYear {
		msgs = append(msgs, fmt.Sprintf("filter.end_year (%d) must lie within filter.min_year-filter.max_year (%d-%d)", f.EndYear, f.MinYear, f.MaxYear))
	}
	if budget := FetchBudget(cfg.Fetch); cfg.Server.RequestTimeout < budget {
		msgs = append(msgs, fmt.Sprintf("server.request_timeout (%s) is shorter than the fetch retry budget (%s)", cfg.Server.RequestTimeout, budget))
	}
	if len(msgs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(msgs, "\n  "))
	}
	return nil
}

// FetchBudget is the longest a fetch can take when every attempt times
// out: max_attempts attempts separated by max_attempts-1 backoffs.
func FetchBudget(f types.FetchConfig) time.Duration {
	if f.MaxAttempts < 1 {
		return 0
	}
	n := time.Duration(f.MaxAttempts)
	return n*f.AttemptTimeout + (n-1)*f.Backoff
}

func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("config validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := fieldPath(e.Namespace())
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, orZero(e.Param()))
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, orZero(e.Param()))
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", field, fieldPath("Config.Filter."+e.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

func orZero(p string) string {
	if p == "" {
		return "0"
	}
	return p
}

// fieldPath turns "Config.Fetch.MaxAttempts" into "fetch.max_attempts".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = snake(p)
	}
	return strings.Join(parts, ".")
}

func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
