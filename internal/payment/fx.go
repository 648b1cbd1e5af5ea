package payment

import (
	"github.com/telestore/telestore/internal/payment/pending"
	"github.com/telestore/telestore/internal/payment/provider"
	"github.com/telestore/telestore/internal/payment/repository"
	"github.com/telestore/telestore/internal/payment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(provider.NewClient),
	fx.Provide(pending.NewStore),
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
