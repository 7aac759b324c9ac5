package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/trattoria/internal/adapter/redisx"
	"github.com/polkiloo/trattoria/internal/config"
	"github.com/polkiloo/trattoria/internal/server/http/handlers"
)

// Module registers HTTP router construction for fx runtime.
var Module = fx.Provide(newRouter)

type routerParams struct {
	fx.In

	Facade      handlers.RestaurantFacade
	Idempotency *redisx.IdempotencyStore
	Config      *config.Config
	Logger      *slog.Logger
}

func newRouter(p routerParams) *gin.Engine {
	opts := Options{KeepAlive: p.Config.KeepAliveInterval}
	if p.Idempotency != nil {
		opts.Idempotency = p.Idempotency
	}
	return Setup(p.Facade, opts, p.Logger)
}
