package db

import (
	"context"
	"fmt"

	"jobmate/dashboard-service/internal/config"
	"jobmate/dashboard-service/internal/favorites"
	"jobmate/dashboard-service/internal/logger"
	"jobmate/dashboard-service/internal/storage"
)

// Resources holds the connections opened for one process. Close releases
// them in reverse order.
type Resources struct {
	Backend storage.Backend
	Events  favorites.Publisher

	closers []func()
}

// Close releases every connection.
func (r *Resources) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
	r.closers = nil
}

// Open connects the storage backend selected by cfg.StorageBackend and, when
// EVENTS_REDIS_URL is set, the favorites event publisher. The events client
// is reused when it points at the storage Redis.
func Open(ctx context.Context, cfg *config.Config, log logger.Logger) (*Resources, error) {
	log = logger.OrNop(log)
	res := &Resources{}

	switch cfg.StorageBackend {
	case config.BackendRedis:
		rdb, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		res.closers = append(res.closers, func() { _ = rdb.Close() })
		res.Backend = storage.NewRedisBackend(rdb)
		if cfg.EventsRedisURL == cfg.RedisURL {
			res.Events = rdb
		}
	case config.BackendPostgres:
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		res.closers = append(res.closers, pool.Close)
		pg := storage.NewPostgresBackend(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			res.Close()
			return nil, fmt.Errorf("postgres schema: %w", err)
		}
		res.Backend = pg
	default:
		res.Backend = storage.NewMemoryBackend()
	}
	log.Info("Storage backend ready", logger.String("backend", cfg.StorageBackend))

	if cfg.EventsRedisURL != "" && res.Events == nil {
		rdb, err := NewRedisClient(ctx, cfg.EventsRedisURL)
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("events redis: %w", err)
		}
		res.closers = append(res.closers, func() { _ = rdb.Close() })
		res.Events = rdb
	}

	return res, nil
}
