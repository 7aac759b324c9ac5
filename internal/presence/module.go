package presence

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/trattoria/internal/domain/model"
)

// Module provides the presence registry with logging hooks.
var Module = fx.Provide(newRegistry)

func newRegistry(logger *slog.Logger) *Registry {
	return NewRegistry(Hooks{
		OnRegister: func(p model.Presence) {
			logger.Info("live client connected",
				slog.String("connection", p.ConnectionID),
				slog.Int64("staff_id", p.StaffID),
				slog.String("module", string(p.Module)),
			)
		},
		OnUnregister: func(p model.Presence) {
			logger.Info("live client disconnected",
				slog.String("connection", p.ConnectionID),
				slog.String("module", string(p.Module)),
			)
		},
	})
}
