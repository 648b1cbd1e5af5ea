package purchase

import (
	"github.com/telestore/telestore/internal/purchase/repository"
	"github.com/telestore/telestore/internal/purchase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("purchase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
