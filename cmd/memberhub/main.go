package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/luminary-arts/memberhub/internal/config"
	"github.com/luminary-arts/memberhub/internal/coupon"
	"github.com/luminary-arts/memberhub/internal/membership"
	"github.com/luminary-arts/memberhub/internal/migration"
	"github.com/luminary-arts/memberhub/internal/observability"
	discordprovider "github.com/luminary-arts/memberhub/internal/providers/discord"
	emailprovider "github.com/luminary-arts/memberhub/internal/providers/email"
	"github.com/luminary-arts/memberhub/internal/rolesync"
	"github.com/luminary-arts/memberhub/internal/server"
	"github.com/luminary-arts/memberhub/internal/stripe"
	"github.com/luminary-arts/memberhub/internal/ticket"
	"github.com/luminary-arts/memberhub/internal/ticketedevent"
	"github.com/luminary-arts/memberhub/internal/tier"
	"github.com/luminary-arts/memberhub/internal/user"
	"github.com/luminary-arts/memberhub/internal/webhook"
	"github.com/luminary-arts/memberhub/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,

		// Providers
		stripe.Module,
		discordprovider.Module,
		emailprovider.Module,

		// Functional domains
		tier.Module,
		user.Module,
		rolesync.Module,
		membership.Module,
		ticketedevent.Module,
		coupon.Module,
		ticket.Module,
		webhook.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
