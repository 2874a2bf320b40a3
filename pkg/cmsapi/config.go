// Package cmsapi is the client for the storefront CMS backend. It speaks the
// backend's GraphQL endpoint and its REST envelope, attaches the bearer
// token of the current session and classifies failures.
package cmsapi

import "time"

// Default client settings.
const (
	DefaultGraphQLPath = "/query"
	DefaultTimeout     = 30 * time.Second
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = 500 * time.Millisecond
)

// Config holds all configuration for the CMS API client.
type Config struct {
	// BaseURL is the backend origin, e.g. https://api.example.com.
	BaseURL string

	// GraphQLPath is appended to BaseURL for GraphQL calls. It may also be an
	// absolute URL (e.g. the console's own /api/gql proxy).
	GraphQLPath string

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts for idempotent calls.
	MaxRetries int

	// RetryDelay is the initial delay between retries (exponential backoff applied).
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with default settings and no base URL.
func DefaultConfig() Config {
	return Config{
		GraphQLPath: DefaultGraphQLPath,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		RetryDelay:  DefaultRetryDelay,
	}
}

// WithBaseURL returns a copy of the config pointing at baseURL.
func (c Config) WithBaseURL(baseURL string) Config {
	c.BaseURL = baseURL
	return c
}

// WithGraphQLPath returns a copy of the config with the given GraphQL path.
func (c Config) WithGraphQLPath(path string) Config {
	c.GraphQLPath = path
	return c
}

// WithTimeout returns a copy of the config with the specified timeout.
func (c Config) WithTimeout(timeout time.Duration) Config {
	c.Timeout = timeout
	return c
}

// WithRetries returns a copy of the config with the specified retry settings.
func (c Config) WithRetries(maxRetries int, retryDelay time.Duration) Config {
	c.MaxRetries = maxRetries
	c.RetryDelay = retryDelay
	return c
}
