// Package usecase defines the interfaces of the application's business logic.
package usecase

import (
	"context"
	"time"

	"meditrack/internal/domain/entity"

	"github.com/google/uuid"
)

// RegisterDrugInput carries the manufacturer-supplied fields for a new drug.
type RegisterDrugInput struct {
	DrugName       string
	BatchNumber    string
	ExpiryDate     time.Time
	ManufacturerID uuid.UUID
}

// DrugStats aggregates the counters shown on the dashboards.
type DrugStats struct {
	TotalDrugs       int64                       `json:"total_drugs"`
	StatusCounts     map[entity.DrugStatus]int64 `json:"status_counts"`
	RoleCounts       map[entity.Role]int64       `json:"role_counts"`
	TotalScans       int64                       `json:"total_scans"`
	UnresolvedAlerts int64                       `json:"unresolved_alerts"`
}

// RegistryUsecase defines the drug registry use cases: registration with QR
// issuance, listings, administrative deletion, and dashboard statistics.
type RegistryUsecase interface {
	// RegisterDrug creates a drug with a fresh verification code, status
	// "created", and its initial scan log entry, atomically.
	RegisterDrug(ctx context.Context, input *RegisterDrugInput) (*entity.Drug, error)

	// ListDrugsByManufacturer returns the manufacturer's drugs, newest first.
	ListDrugsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) ([]*entity.Drug, error)

	// ListAllDrugs returns every drug, newest first. Admin only.
	ListAllDrugs(ctx context.Context) ([]*entity.Drug, error)

	// DeleteDrug hard-removes a drug together with its scan logs and alerts
	// in one transaction. Admin escape hatch; exempt from the audit trail.
	DeleteDrug(ctx context.Context, drugID uuid.UUID) error

	// VerificationQR renders the drug's public verify URL as a PNG QR code.
	VerificationQR(ctx context.Context, drugID uuid.UUID) ([]byte, error)

	// RecentScans returns the latest scan log entries across all drugs,
	// newest first. Admin activity feed.
	RecentScans(ctx context.Context, limit int) ([]*entity.ScanLog, error)

	// Stats aggregates dashboard counters.
	Stats(ctx context.Context) (*DrugStats, error)
}
