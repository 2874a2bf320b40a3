// Package storage uploads console assets (product images, logos) to object
// storage and derives their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrNoBucket is returned when an operation names no bucket.
var ErrNoBucket = errors.New("storage: bucket is required")

// Descriptor describes a stored object.
type Descriptor struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
	PublicURL   string `json:"public_url"`
}

// ObjectStore is the object storage collaborator.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) (Descriptor, error)
	PublicURL(bucket, objectPath string) string
	// Remove reports whether an object was removed.
	Remove(ctx context.Context, bucket, objectPath string) (bool, error)
}

// Config holds the storage project settings.
type Config struct {
	// ProjectURL is the storage project origin, e.g. https://xyz.supabase.co.
	ProjectURL string `yaml:"project_url"`
	// Endpoint is the S3 endpoint; empty means <ProjectURL>/storage/v1/s3.
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	Bucket          string `yaml:"bucket"`
	CacheControl    string `yaml:"cache_control"`
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() Config {
	return Config{
		Region:       "us-east-1",
		Bucket:       "images",
		CacheControl: "max-age=3600",
	}
}

// S3Endpoint returns the configured endpoint or the one derived from the
// project URL.
func (c Config) S3Endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return strings.TrimRight(c.ProjectURL, "/") + "/storage/v1/s3"
}

// Configured reports whether uploads can be attempted.
func (c Config) Configured() bool {
	return c.ProjectURL != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// PublicURL builds the public object URL of a storage project.
func PublicURL(projectURL, bucket, objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s",
		strings.TrimRight(projectURL, "/"), bucket, strings.TrimLeft(objectPath, "/"))
}

// ObjectPath returns a collision-free object path for an uploaded file under
// folder, keeping the file's extension.
func ObjectPath(folder, filename string) string {
	name := uuid.NewString() + strings.ToLower(path.Ext(filename))
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return name
	}
	return folder + "/" + name
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
