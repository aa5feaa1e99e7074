package storage

import (
	"context"
	"errors"
	"sync"

	"github.com/invoiceportal/backend/internal/application/invoicing"
)

// Ensure MemoryDocumentStore implements invoicing.DocumentStore
var _ invoicing.DocumentStore = (*MemoryDocumentStore)(nil)

// MemoryDocumentStore keeps documents in process memory. Used in development
// (no bucket configured) and in tests.
type MemoryDocumentStore struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// FailUploads makes every Upload return an error; tests use it to
	// exercise the non-fatal storage failure path of the send flow.
	FailUploads bool
}

// NewMemoryDocumentStore creates an empty in-memory store
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{objects: make(map[string][]byte)}
}

// Upload stores a document under the given key.
func (s *MemoryDocumentStore) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	if s.FailUploads {
		return errors.New("upload failed")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[key] = buf
	return nil
}

// Download returns the stored document bytes.
func (s *MemoryDocumentStore) Download(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

// Exists checks if a document is present under the given key.
func (s *MemoryDocumentStore) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("storage key is required")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Len returns the number of stored documents
func (s *MemoryDocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
