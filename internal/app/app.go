package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/trattoria/internal/adapter/redisx"
	"github.com/polkiloo/trattoria/internal/config"
	"github.com/polkiloo/trattoria/internal/live"
	"github.com/polkiloo/trattoria/internal/notify"
	"github.com/polkiloo/trattoria/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewRestaurantFacade,
		newPublisher,
		newHTTPServer,
		newRelay,
	),
	fx.Invoke(registerLifecycle),
)

type publisherParams struct {
	fx.In

	Bus    *notify.Bus
	PubSub *redisx.EventsPubSub
	Logger *slog.Logger
}

// newPublisher routes events through redis when configured so every instance
// delivers them; otherwise they go straight to the local bus.
func newPublisher(p publisherParams) notify.Publisher {
	if p.PubSub == nil {
		return p.Bus
	}
	return notify.NewRelayPublisher(p.PubSub, p.Bus, p.Logger)
}

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
	Hub    *live.Hub
}

// newHTTPServer closes the live hub on shutdown; open event streams would
// otherwise keep their connections active until the stop deadline.
func newHTTPServer(p serverParams) *http.Server {
	server := &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
	server.RegisterOnShutdown(p.Hub.Close)
	return server
}

type relayParams struct {
	fx.In

	PubSub *redisx.EventsPubSub
	Bus    *notify.Bus
	Config *config.Config
	Logger *slog.Logger
}

func newRelay(p relayParams) *worker.Relay {
	if p.PubSub == nil {
		return nil
	}
	return worker.NewRelay(p.PubSub, p.Bus, p.Config.RelayRetryDelay, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Relay      *worker.Relay
	Facade     *RestaurantFacade
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Facade.EnsureAdmin(ctx, p.Config.AdminLogin, p.Config.AdminPassword); err != nil {
				return fmt.Errorf("bootstrap admin: %w", err)
			}

			p.Logger.Info("starting trattoria", slog.String("addr", p.Server.Addr))
			if p.Relay != nil {
				p.Relay.Start(context.WithoutCancel(ctx))
			}
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if p.Relay != nil {
				p.Relay.Stop()
			}

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("trattoria stopped")
			return nil
		},
	})
}
