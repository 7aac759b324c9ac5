package live

import "go.uber.org/fx"

// Module provides the live-channel hub.
var Module = fx.Provide(NewHub)
