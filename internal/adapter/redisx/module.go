package redisx

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/trattoria/internal/config"
)

// Module provides the Redis client and its collaborators. Every provided
// value is nil when REDIS_ADDR is not configured.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(newEventsPubSub, newIdempotencyStore, newMenuCache),
	fx.Invoke(registerLifecycle),
)

type clientParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*redis.Client, error) {
	if p.Config.RedisAddr == "" {
		p.Logger.Info("redis disabled, running single instance")
		return nil, nil
	}
	return New(p.Ctx, Config{Addr: p.Config.RedisAddr, Password: p.Config.RedisPassword, DB: p.Config.RedisDB})
}

func newEventsPubSub(rdb *redis.Client, logger *slog.Logger) *EventsPubSub {
	if rdb == nil {
		return nil
	}
	return NewEventsPubSub(rdb, logger)
}

func newIdempotencyStore(rdb *redis.Client, cfg *config.Config) *IdempotencyStore {
	if rdb == nil {
		return nil
	}
	return NewIdempotencyStore(rdb, cfg.IdempotencyTTL)
}

func newMenuCache(rdb *redis.Client, cfg *config.Config, logger *slog.Logger) *MenuCache {
	if rdb == nil {
		return nil
	}
	return NewMenuCache(NewCache(rdb), cfg.MenuCacheTTL, logger)
}

func registerLifecycle(lc fx.Lifecycle, rdb *redis.Client) {
	if rdb == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})
}
