package artifact

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/luminary-arts/memberhub/internal/config"
)

var Module = fx.Module("ticket.artifact",
	fx.Provide(
		NewRedisClient,
		NewGenerator,
		func(g *Generator) Processor { return g },
		NewQueueFromConfig,
	),
	fx.Invoke(registerLifecycle),
)

func NewRedisClient(lc fx.Lifecycle, cfg config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

func NewQueueFromConfig(client *redis.Client, processor Processor, cfg config.Config, log *zap.Logger) *Queue {
	return NewQueue(client, processor, cfg.Ticket.ArtifactWorkers, log)
}

func registerLifecycle(lc fx.Lifecycle, queue *Queue) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			queue.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			queue.Stop()
			return nil
		},
	})
}
