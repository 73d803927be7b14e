package notify

import "go.uber.org/fx"

// Module provides the connection hub.
var Module = fx.Provide(NewHub)
