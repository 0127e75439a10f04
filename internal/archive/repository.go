package archive

import (
	"context"

	"github.com/smallbiznis/carpark/internal/ledger/domain"
	"gorm.io/gorm"
)

// Repository persists completed sessions through gorm. It satisfies
// domain.Archiver so the ledger never depends on the storage layer directly.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ArchiveRecord(ctx context.Context, record domain.HistoryRecord) error {
	row := Record{
		SessionID: int64(record.SessionID),
		Country:   record.Country,
		Plate:     record.Plate,
		EntryTime: record.EntryTime,
		ExitTime:  record.ExitTime,
		Floor:     record.Floor,
		Fee:       record.Fee,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

// ListByVehicle returns archived sessions for one vehicle, oldest first.
func (r *Repository) ListByVehicle(ctx context.Context, country, plate string) ([]Record, error) {
	var rows []Record
	err := r.db.WithContext(ctx).
		Where("country = ? AND plate = ?", country, plate).
		Order("exit_time ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
