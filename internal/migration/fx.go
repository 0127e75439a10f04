package migration

import (
	"github.com/smallbiznis/carpark/internal/archive"
	"github.com/smallbiznis/carpark/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The SQL migrations target postgres; other dialects fall back to
		// gorm's schema sync.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(&archive.Record{})
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
