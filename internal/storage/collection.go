package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"jobmate/dashboard-service/internal/logger"
)

// Collection is a typed repository storing a []T as a JSON array.
// A nil backend behaves like absent storage.
type Collection[T any] struct {
	backend Backend
	log     logger.Logger
}

// NewCollection wraps backend. Either argument may be nil.
func NewCollection[T any](backend Backend, log logger.Logger) *Collection[T] {
	return &Collection[T]{backend: backend, log: logger.OrNop(log)}
}

// Read returns the list stored under key. It returns an empty list when
// the key is absent, storage is unavailable, or the stored value is not a
// JSON array of T.
func (c *Collection[T]) Read(ctx context.Context, key string) []T {
	empty := []T{}
	if c.backend == nil {
		return empty
	}

	raw, err := c.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.log.Warn("storage read failed", logger.String("key", key), logger.Error(err))
		}
		return empty
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return empty
	}

	var items []T
	if err := json.Unmarshal(trimmed, &items); err != nil {
		c.log.Warn("storage value is not a valid list", logger.String("key", key), logger.Error(err))
		return empty
	}
	if items == nil {
		return empty
	}
	return items
}

// Write stores items under key. A nil slice is not a list and is ignored.
// Serialization and backend errors are logged, never returned.
func (c *Collection[T]) Write(ctx context.Context, key string, items []T) {
	if c.backend == nil || items == nil {
		return
	}

	raw, err := json.Marshal(items)
	if err != nil {
		c.log.Error("storage encode failed", logger.String("key", key), logger.Error(err))
		return
	}
	if err := c.backend.Set(ctx, key, raw); err != nil {
		c.log.Error("storage write failed", logger.String("key", key), logger.Error(err))
	}
}

// Clear removes key.
func (c *Collection[T]) Clear(ctx context.Context, key string) {
	if c.backend == nil {
		return
	}
	if err := c.backend.Delete(ctx, key); err != nil {
		c.log.Warn("storage clear failed", logger.String("key", key), logger.Error(err))
	}
}
