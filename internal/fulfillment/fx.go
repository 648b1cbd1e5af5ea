package fulfillment

import "go.uber.org/fx"

var Module = fx.Module("fulfillment.service",
	fx.Provide(New),
)
