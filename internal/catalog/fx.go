package catalog

import (
	"github.com/telestore/telestore/internal/catalog/repository"
	"github.com/telestore/telestore/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
