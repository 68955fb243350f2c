// Package storage persists JSON-encoded collections under named keys.
//
// A Backend is a plain key-value store; Collection layers typed,
// defensive (de)serialization on top of it. Backend failures never
// leave this package: reads degrade to an empty list and writes are
// logged and dropped.
package storage

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNotFound is returned by a Backend when the key does not exist.
	ErrNotFound = errors.New("storage: key not found")
	// ErrUnavailable is returned when no storage is reachable.
	ErrUnavailable = errors.New("storage: unavailable")
)

// Backend is a key-value store holding opaque byte values.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryBackend keeps values in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryBackend) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
