package tier

import (
	"github.com/luminary-arts/memberhub/internal/tier/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tier.catalog",
	fx.Provide(repository.Provide),
)
