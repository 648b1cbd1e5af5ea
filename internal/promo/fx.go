package promo

import (
	"github.com/telestore/telestore/internal/promo/repository"
	"github.com/telestore/telestore/internal/promo/service"
	"go.uber.org/fx"
)

var Module = fx.Module("promo.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
