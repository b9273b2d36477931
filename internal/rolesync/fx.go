package rolesync

import "go.uber.org/fx"

var Module = fx.Module("rolesync.service",
	fx.Provide(New),
)
