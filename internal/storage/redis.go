package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores values as plain Redis strings without expiry.
type RedisBackend struct {
	rdb redis.Cmdable
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(rdb redis.Cmdable) *RedisBackend {
	return &RedisBackend{rdb: rdb}
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if r.rdb == nil {
		return nil, ErrUnavailable
	}
	raw, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return raw, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if r.rdb == nil {
		return ErrUnavailable
	}
	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if r.rdb == nil {
		return ErrUnavailable
	}
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis DEL %s: %w", key, err)
	}
	return nil
}
