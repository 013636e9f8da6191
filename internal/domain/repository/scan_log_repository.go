package repository

import (
	"context"

	"meditrack/internal/domain/entity"

	"github.com/google/uuid"
)

// RoleCount is one row of the per-role scan aggregation used by dashboards.
type RoleCount struct {
	Role  entity.Role
	Count int64
}

// ScanLogRepository defines the interface for the append-only scan log.
// Entries are immutable once written; there are no update or delete
// operations except the cascade that accompanies a drug hard-delete.
type ScanLogRepository interface {
	// AppendScanLog persists a new scan log entry.
	AppendScanLog(ctx context.Context, log *entity.ScanLog) error

	// FindScanLogsByDrug retrieves all entries for a drug ordered by
	// (scan_time, seq) ascending for timeline display.
	FindScanLogsByDrug(ctx context.Context, drugID uuid.UUID) ([]*entity.ScanLog, error)

	// FindRecentScanLogs retrieves the most recent entries across all drugs,
	// newest first, bounded by limit. Used by the admin dashboard.
	FindRecentScanLogs(ctx context.Context, limit int) ([]*entity.ScanLog, error)

	// DeleteScanLogsByDrug removes all entries for a drug. Only called from
	// the drug-delete cascade.
	DeleteScanLogsByDrug(ctx context.Context, drugID uuid.UUID) error

	// CountScanLogsByRole aggregates scan counts per acting role.
	CountScanLogsByRole(ctx context.Context) ([]RoleCount, error)

	// CountScanLogs returns the total number of entries.
	CountScanLogs(ctx context.Context) (int64, error)
}
