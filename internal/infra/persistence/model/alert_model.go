package model

import (
	"time"

	"github.com/google/uuid"
)

// AlertModel mirrors the 'alerts' table.
type AlertModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	DrugID      uuid.UUID `gorm:"type:uuid;not null;index"`
	AlertType   string    `gorm:"type:varchar(50);not null"`
	Description string    `gorm:"type:text"`
	Resolved    bool      `gorm:"not null;default:false;index"`
	CreatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (AlertModel) TableName() string {
	return "alerts"
}
