package archive

import (
	"github.com/smallbiznis/carpark/internal/config"
	"github.com/smallbiznis/carpark/internal/ledger/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("archive",
	fx.Provide(provideArchiver),
)

// provideArchiver returns a nil Archiver when archiving is disabled; the
// ledger treats a nil collaborator as "skip".
func provideArchiver(cfg config.Config, db *gorm.DB) domain.Archiver {
	if !cfg.ArchiveEnabled || db == nil {
		return nil
	}
	return NewRepository(db)
}
