package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// BlobStore persists uploaded file bytes. The upload handler writes the
// blob first and registers metadata only after the write succeeded, so a
// failed write never leaves a dangling record.
type BlobStore interface {
	// Write stores the object under key and returns the storage path.
	// size may be -1 when unknown; implementations then stream.
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
}

// MemoryBlobStore keeps objects in a map. Used by unit and integration
// tests and as the development fallback when no object store is
// configured.
type MemoryBlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryBlobStore returns an empty in-memory blob store.
func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{objects: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Write(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", fmt.Errorf("read object: %w", err)
	}

	s.mu.Lock()
	s.objects[key] = buf.Bytes()
	s.mu.Unlock()

	return key, nil
}

// Object returns a stored object's bytes. Test helper.
func (s *MemoryBlobStore) Object(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.objects[key]
	return b, ok
}

// Len returns the number of stored objects. Test helper.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
