package discord

import (
	"github.com/luminary-arts/memberhub/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.discord",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) Provider {
	if cfg.Discord.BotToken == "" || cfg.Discord.GuildID == "" {
		return &NoOpProvider{}
	}
	return NewBot(Config{
		APIBaseURL: cfg.Discord.APIBaseURL,
		BotToken:   cfg.Discord.BotToken,
		GuildID:    cfg.Discord.GuildID,
	})
}
