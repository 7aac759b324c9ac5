package notify

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/trattoria/internal/config"
)

// Module provides the process-wide notification bus.
var Module = fx.Provide(newBus)

func newBus(cfg *config.Config, logger *slog.Logger) *Bus {
	return NewBus(cfg.SubscriberBuffer, logger)
}
