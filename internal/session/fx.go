package session

import (
	"github.com/telestore/telestore/internal/session/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("session",
	fx.Provide(
		repository.Provide,
		NewManager,
		NewStore,
	),
)
