package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemoryStore keeps objects in memory. It backs dry runs and tests.
type MemoryStore struct {
	projectURL string

	mu      sync.Mutex
	objects map[string][]byte
}

// NewMemoryStore creates an empty store whose public URLs use projectURL.
func NewMemoryStore(projectURL string) *MemoryStore {
	return &MemoryStore{projectURL: projectURL, objects: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) (Descriptor, error) {
	if bucket == "" {
		return Descriptor{}, ErrNoBucket
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Descriptor{}, fmt.Errorf("read upload: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Descriptor{}, err
	}

	m.mu.Lock()
	m.objects[bucket+"/"+objectPath] = data
	m.mu.Unlock()

	return Descriptor{
		Bucket:      bucket,
		Path:        objectPath,
		Size:        int64(len(data)),
		ContentType: contentType,
		PublicURL:   m.PublicURL(bucket, objectPath),
	}, nil
}

func (m *MemoryStore) PublicURL(bucket, objectPath string) string {
	return PublicURL(m.projectURL, bucket, objectPath)
}

func (m *MemoryStore) Remove(_ context.Context, bucket, objectPath string) (bool, error) {
	if bucket == "" {
		return false, ErrNoBucket
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := bucket + "/" + objectPath
	if _, ok := m.objects[key]; !ok {
		return false, nil
	}
	delete(m.objects, key)
	return true, nil
}

// Object returns the stored bytes.
func (m *MemoryStore) Object(bucket, objectPath string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[bucket+"/"+objectPath]
	return data, ok
}
