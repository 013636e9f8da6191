package model

import (
	"time"

	"github.com/google/uuid"
)

// ScanLogModel mirrors the 'scan_logs' table. Rows are append-only: no
// update path exists, and deletion only happens through the drug cascade.
// Seq is a bigserial used as a stable tiebreak when two rows share a scan
// time.
type ScanLogModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key"`
	DrugID             uuid.UUID  `gorm:"type:uuid;not null;index"`
	ScannedByUserID    *uuid.UUID `gorm:"type:uuid"`
	Role               string     `gorm:"type:varchar(20);not null"`
	Location           string     `gorm:"type:varchar(255);not null"`
	VerificationResult string     `gorm:"type:varchar(20);not null"`
	Explanation        string     `gorm:"type:text"`
	ScanTime           time.Time  `gorm:"not null;index"`
	Seq                int64      `gorm:"autoIncrement;uniqueIndex"`
}

// TableName explicitly sets the table name for GORM.
func (ScanLogModel) TableName() string {
	return "scan_logs"
}
