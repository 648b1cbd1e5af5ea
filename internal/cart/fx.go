package cart

import (
	"github.com/telestore/telestore/internal/cart/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cart.service",
	fx.Provide(service.New),
)
