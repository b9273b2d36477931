package membership

import (
	"github.com/luminary-arts/memberhub/internal/membership/repository"
	"github.com/luminary-arts/memberhub/internal/membership/service"
	"go.uber.org/fx"
)

var Module = fx.Module("membership.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
