package ticketedevent

import (
	"github.com/luminary-arts/memberhub/internal/ticketedevent/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("ticketedevent.catalog",
	fx.Provide(repository.Provide),
)
