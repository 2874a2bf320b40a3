// Package config loads storecms settings from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/me/storecms/internal/storage"
	"github.com/me/storecms/pkg/cmsapi"
)

// Config is the complete storecms configuration.
type Config struct {
	API     APIConfig      `yaml:"api"`
	Server  ServerConfig   `yaml:"server"`
	Storage storage.Config `yaml:"storage"`
	Log     LogConfig      `yaml:"log"`
}

// APIConfig points the console at the CMS backend.
type APIConfig struct {
	URL         string        `yaml:"url"`
	GraphQLPath string        `yaml:"graphql_path"`
	Timeout     time.Duration `yaml:"timeout"`
	Retries     int           `yaml:"retries"`
}

// ServerConfig holds configuration for the GraphQL proxy server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`             // Listen address (default ":8080")
	UpstreamTimeout time.Duration `yaml:"upstream_timeout"` // Per-request upstream timeout
	RateLimit       float64       `yaml:"rate_limit"`       // Requests per second per client, 0 disables
	RateBurst       int           `yaml:"rate_burst"`
	TokenCookie     string        `yaml:"token_cookie"` // Cookie holding the bearer token
}

// LogConfig selects the log level and format.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Default returns sensible defaults.
func Default() Config {
	return Config{
		API: APIConfig{
			GraphQLPath: cmsapi.DefaultGraphQLPath,
			Timeout:     cmsapi.DefaultTimeout,
			Retries:     cmsapi.DefaultMaxRetries,
		},
		Server:  DefaultServerConfig(),
		Storage: storage.DefaultConfig(),
		Log:     LogConfig{Level: "info", Format: "text"},
	}
}

// DefaultServerConfig returns the proxy defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:            ":8080",
		UpstreamTimeout: 15 * time.Second,
		RateLimit:       20,
		RateBurst:       40,
		TokenCookie:     "token",
	}
}

// DefaultPath returns ~/.storecms/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".storecms", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"STORECMS_API_URL":                   &c.API.URL,
		"STORECMS_GRAPHQL_PATH":              &c.API.GraphQLPath,
		"STORECMS_SERVER_ADDR":               &c.Server.Addr,
		"STORECMS_STORAGE_URL":               &c.Storage.ProjectURL,
		"STORECMS_STORAGE_ENDPOINT":          &c.Storage.Endpoint,
		"STORECMS_STORAGE_REGION":            &c.Storage.Region,
		"STORECMS_STORAGE_ACCESS_KEY_ID":     &c.Storage.AccessKeyID,
		"STORECMS_STORAGE_SECRET_ACCESS_KEY": &c.Storage.SecretAccessKey,
		"STORECMS_STORAGE_SESSION_TOKEN":     &c.Storage.SessionToken,
		"STORECMS_STORAGE_BUCKET":            &c.Storage.Bucket,
		"STORECMS_LOG_LEVEL":                 &c.Log.Level,
		"STORECMS_LOG_FORMAT":                &c.Log.Format,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("STORECMS_API_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STORECMS_API_TIMEOUT: %w", err)
		}
		c.API.Timeout = d
	}
	if v, ok := lookup("STORECMS_RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("STORECMS_RATE_LIMIT: %w", err)
		}
		c.Server.RateLimit = f
	}
	return nil
}

// Client returns the CMS API client settings.
func (c APIConfig) Client() cmsapi.Config {
	return cmsapi.DefaultConfig().
		WithBaseURL(c.URL).
		WithGraphQLPath(c.GraphQLPath).
		WithTimeout(c.Timeout).
		WithRetries(c.Retries, cmsapi.DefaultRetryDelay)
}
