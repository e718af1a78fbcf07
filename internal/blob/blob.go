// Package blob stores attachment content. Metadata lives in the report
// store; this package only moves bytes.
package blob

import (
	"context"
	"sync"

	"github.com/crimenet/report-service/internal/apperr"
)

// Store reads and writes attachment blobs by key.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, string, error)
	Delete(ctx context.Context, key string) error
}

// Memory is an in-process blob store for the memory backend and tests.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string]memoryBlob
}

type memoryBlob struct {
	contentType string
	data        []byte
}

// NewMemory creates an empty in-memory blob store.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]memoryBlob)}
}

// Put stores data under key.
func (m *Memory) Put(ctx context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := make([]byte, len(data))
	copy(cp, data)
	m.blobs[key] = memoryBlob{contentType: contentType, data: cp}
	return nil
}

// Get returns the data and content type stored under key.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.blobs[key]
	if !ok {
		return nil, "", apperr.NotFound("blob").WithDetail("key", key)
	}
	cp := make([]byte, len(b.data))
	copy(cp, b.data)
	return cp, b.contentType, nil
}

// Delete removes the blob stored under key, if any.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	return nil
}
