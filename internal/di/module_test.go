package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/trattoria/internal/app"
	"github.com/polkiloo/trattoria/internal/config"
	"github.com/polkiloo/trattoria/internal/domain/repository"
	"github.com/polkiloo/trattoria/internal/notify"
	"github.com/polkiloo/trattoria/internal/storage/postgres"
	"github.com/polkiloo/trattoria/internal/test"
	"github.com/polkiloo/trattoria/internal/worker"
)

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:        ":0",
		DatabaseURI:       "postgres://stub",
		AuthSecret:        "secret",
		TokenTTL:          time.Hour,
		ShutdownTimeout:   time.Millisecond,
		SubscriberBuffer:  8,
		KeepAliveInterval: time.Second,
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	store := test.NewMemoryStore()

	var (
		facade    *app.RestaurantFacade
		publisher notify.Publisher
		relay     *worker.Relay
	)
	fxApp := fx.New(
		fx.NopLogger,
		fx.Supply(context.Background()),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Decorate(
				func() repository.Factory { return store },
				func() repository.UnitOfWork { return store },
			),
		),
		fx.Populate(&facade, &publisher, &relay),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	t.Cleanup(func() { _ = fxApp.Stop(context.Background()) })
	if facade == nil {
		t.Fatal("expected restaurant facade instance")
	}
	if _, ok := publisher.(*notify.Bus); !ok {
		t.Fatalf("expected local bus without redis, got %T", publisher)
	}
	if relay != nil {
		t.Fatal("expected no relay without redis")
	}
}
