package archive

import "time"

// Record is the durable row written for each completed parking session.
type Record struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID int64     `gorm:"index" json:"session_id"`
	Country   string    `gorm:"size:8;index:idx_parking_history_vehicle" json:"country"`
	Plate     string    `gorm:"size:16;index:idx_parking_history_vehicle" json:"registration_no"`
	EntryTime time.Time `json:"entry_time"`
	ExitTime  time.Time `json:"exit_time"`
	Floor     int       `json:"floor"`
	Fee       float64   `json:"fee"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Record) TableName() string {
	return "parking_history"
}
