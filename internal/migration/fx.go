package migration

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/luminary-arts/memberhub/internal/config"
	"github.com/luminary-arts/memberhub/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			// Embedded migrations target postgres. Other dialects are
			// expected to manage schema externally.
			log.Named("migrations").Warn("skipping embedded migrations",
				zap.String("db_type", cfg.DBType),
			)
			return seed.EnsureDefaultTiers(conn, genID)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		return seed.EnsureDefaultTiers(conn, genID)
	}),
)
