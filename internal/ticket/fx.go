package ticket

import (
	"go.uber.org/fx"

	"github.com/luminary-arts/memberhub/internal/ticket/artifact"
	"github.com/luminary-arts/memberhub/internal/ticket/repository"
	"github.com/luminary-arts/memberhub/internal/ticket/service"
)

var Module = fx.Module("ticket.service",
	artifact.Module,
	fx.Provide(
		repository.Provide,
		service.New,
	),
)
