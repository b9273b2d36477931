package user

import (
	"github.com/luminary-arts/memberhub/internal/user/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
)
