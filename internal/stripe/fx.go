package stripe

import (
	"go.uber.org/fx"

	"github.com/luminary-arts/memberhub/internal/config"
)

func NewVerifierFromConfig(cfg config.Config) *Verifier {
	return NewVerifier(cfg.Stripe.WebhookSecret)
}

var Module = fx.Module("stripe",
	fx.Provide(
		NewVerifierFromConfig,
		NewSessionFetcher,
	),
)
