// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP client timeout for a single request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubsum/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
}

// FetchConfig holds settings for the external author fetch.
type FetchConfig struct {
	// BaseURL is the OpenAlex API root (default https://api.openalex.org).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url" validate:"required,url"`

	// MaxAttempts bounds the fetch retry loop (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts" validate:"min=1,max=10"`

	// Backoff is the fixed wait between attempts (default 5s).
	Backoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff" validate:"gte=0"`

	// AttemptTimeout caps a single attempt, including its 429 retries.
	AttemptTimeout time.Duration `json:"attempt_timeout" yaml:"attempt_timeout" mapstructure:"attempt_timeout" validate:"gt=0"`

	// RateLimit is the maximum number of API requests per second.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit" mapstructure:"rate_limit" validate:"gt=0"`

	// MaxWorks caps the number of works retrieved for one author.
	MaxWorks int `json:"max_works" yaml:"max_works" mapstructure:"max_works" validate:"min=1"`

	// Email is sent as the mailto parameter for OpenAlex polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email" validate:"omitempty,email"`
}

// FilterConfig holds the year slider range and its default selection.
type FilterConfig struct {
	MinYear   int `json:"min_year" yaml:"min_year" mapstructure:"min_year"`
	MaxYear   int `json:"max_year" yaml:"max_year" mapstructure:"max_year" validate:"gtefield=MinYear"`
	StartYear int `json:"start_year" yaml:"start_year" mapstructure:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year" mapstructure:"end_year"`
}

// SessionConfig holds per-session defaults.
type SessionConfig struct {
	// DefaultAuthor pre-fills the author name input (default "Jane Doe").
	DefaultAuthor string `json:"default_author" yaml:"default_author" mapstructure:"default_author"`
}

// CacheConfig controls the fetch and upload caches.
type CacheConfig struct {
	// TTL is how long a cached result stays valid.
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`

	// MaxEntries bounds each cache; the least recently used entry is evicted first.
	// Zero disables caching.
	MaxEntries int `json:"max_entries" yaml:"max_entries" mapstructure:"max_entries" validate:"gte=0"`
}

// ServerConfig holds settings for the HTTP shell.
type ServerConfig struct {
	Addr           string        `json:"addr" yaml:"addr" mapstructure:"addr" validate:"required"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout" validate:"gt=0"`
	MaxUploadBytes int64         `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes" validate:"gt=0"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=debug info warn warning error"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=text json logfmt"`
}

// Config groups all settings for the tool.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http" mapstructure:"http"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Filter  FilterConfig  `json:"filter" yaml:"filter" mapstructure:"filter"`
	Session SessionConfig `json:"session" yaml:"session" mapstructure:"session"`
	Cache   CacheConfig   `json:"cache" yaml:"cache" mapstructure:"cache"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	Log     LogConfig     `json:"log" yaml:"log" mapstructure:"log"`
}
