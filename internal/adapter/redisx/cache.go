package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

type Cache struct {
	rdb kv
	sf  singleflight.Group
}

func NewCache(rdb kv) *Cache {
	return &Cache{rdb: rdb}
}

func (c *Cache) GetString(ctx context.Context, key string) (string, bool, error) {
	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var zero T

	s, ok, err := c.GetString(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}

	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func SetJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key, string(b), ttl).Err()
}

// GetOrSetJSON serves key from the cache, collapsing concurrent misses into one loader call.
func GetOrSetJSON[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, loader func(ctx context.Context) (T, error)) (T, error) {
	if v, ok, err := GetJSON[T](ctx, c, key); err != nil || ok {
		return v, err
	}

	vAny, err, _ := c.sf.Do(key, func() (any, error) {
		if v, ok, err := GetJSON[T](ctx, c, key); err != nil || ok {
			return v, err
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		_ = SetJSON(ctx, c, key, v, ttl)
		return v, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	v, ok := vAny.(T)
	if !ok {
		var zero T
		return zero, errors.New("cache: unexpected value type")
	}
	return v, nil
}

// MenuCache caches the product listing; writes to products invalidate it.
type MenuCache struct {
	cache  *Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewMenuCache(cache *Cache, ttl time.Duration, logger *slog.Logger) *MenuCache {
	return &MenuCache{cache: cache, ttl: ttl, logger: logger}
}

// Menu returns the cached listing, loading it on a miss. A cache outage falls back to load.
func (m *MenuCache) Menu(ctx context.Context, load func(ctx context.Context) ([]model.Product, error)) ([]model.Product, error) {
	var loadErr error
	products, err := GetOrSetJSON(ctx, m.cache, KeyMenu(), m.ttl, func(ctx context.Context) ([]model.Product, error) {
		p, err := load(ctx)
		loadErr = err
		return p, err
	})
	if err == nil {
		return products, nil
	}
	if loadErr != nil {
		return nil, loadErr
	}
	m.logger.Warn("menu cache unavailable", slog.String("error", err.Error()))
	return load(ctx)
}

func (m *MenuCache) Invalidate(ctx context.Context) {
	if err := m.cache.Del(ctx, KeyMenu()); err != nil {
		m.logger.Warn("menu cache invalidation failed", slog.String("error", err.Error()))
	}
}
