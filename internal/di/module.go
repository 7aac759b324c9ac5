package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/trattoria/internal/adapter/redisx"
	"github.com/polkiloo/trattoria/internal/app"
	"github.com/polkiloo/trattoria/internal/config"
	"github.com/polkiloo/trattoria/internal/live"
	"github.com/polkiloo/trattoria/internal/logger"
	"github.com/polkiloo/trattoria/internal/notify"
	"github.com/polkiloo/trattoria/internal/pkg/auth"
	"github.com/polkiloo/trattoria/internal/presence"
	"github.com/polkiloo/trattoria/internal/server/http/handlers"
	"github.com/polkiloo/trattoria/internal/server/http/router"
	"github.com/polkiloo/trattoria/internal/storage/postgres"
	"github.com/polkiloo/trattoria/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		redisx.Module,
		notify.Module,
		presence.Module,
		live.Module,
		usecase.Module,
		fx.Provide(func(s *postgres.Storage) app.HealthChecker { return s }),
		fx.Provide(func(f *app.RestaurantFacade) handlers.RestaurantFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
