package storage

import (
	"context"
	"fmt"
	"sync"
)

// MockStore is a hand-written, in-memory BlobStore used in unit tests.
type MockStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	// Optional error overrides, set in tests to simulate failure paths.
	UploadErr   error
	DownloadErr error
	DeleteErr   error
}

func NewMockStore() *MockStore {
	return &MockStore{blobs: make(map[string][]byte)}
}

func blobKey(bucket, key string) string { return bucket + "/" + key }

func (m *MockStore) Upload(_ context.Context, bucket, key string, data []byte, _ string) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[blobKey(bucket, key)] = cp
	return nil
}

func (m *MockStore) Download(_ context.Context, bucket, key string) ([]byte, error) {
	if m.DownloadErr != nil {
		return nil, m.DownloadErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[blobKey(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("blob %s/%s not found", bucket, key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MockStore) Delete(_ context.Context, bucket, key string) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, blobKey(bucket, key))
	return nil
}

// Len reports how many blobs are stored, across all buckets.
func (m *MockStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.blobs)
}

var _ BlobStore = (*MockStore)(nil)
