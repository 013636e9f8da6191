// Package model contains the GORM persistence models mirroring the database schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// DrugModel mirrors the 'drugs' table. The verification code carries a
// unique index; it is the externally exposed identity embedded in QR
// payloads and must never collide.
type DrugModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key"`
	DrugName         string    `gorm:"type:varchar(255);not null"`
	BatchNumber      string    `gorm:"type:varchar(100);not null"`
	ExpiryDate       time.Time `gorm:"type:date;not null"`
	ManufacturerID   uuid.UUID `gorm:"type:uuid;not null;index"`
	VerificationCode string    `gorm:"type:varchar(64);unique;not null"`
	CurrentStatus    string    `gorm:"type:varchar(20);not null;default:'created';index"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	ScanLogs []ScanLogModel `gorm:"foreignKey:DrugID"`
	Alerts   []AlertModel   `gorm:"foreignKey:DrugID"`
}

// TableName explicitly sets the table name for GORM.
func (DrugModel) TableName() string {
	return "drugs"
}
