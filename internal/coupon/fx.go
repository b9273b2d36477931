package coupon

import (
	"github.com/luminary-arts/memberhub/internal/coupon/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("coupon.service",
	fx.Provide(repository.Provide),
)
