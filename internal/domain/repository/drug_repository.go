// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"meditrack/internal/domain/entity"
	"meditrack/internal/errors"

	"github.com/google/uuid"
)

// Domain-specific errors for drug persistence.
var (
	// ErrDrugNotFound is returned when a drug is not found by id or code.
	ErrDrugNotFound = errors.New("drug not found")
	// ErrDuplicateVerificationCode is returned when the generated code
	// collides with an existing one. The unique index is the backstop for
	// code generation.
	ErrDuplicateVerificationCode = errors.New("verification code already exists")
	// ErrStatusConflict is returned when a compare-and-set status update
	// finds the stored status no longer matches what the caller observed.
	ErrStatusConflict = errors.New("drug status changed concurrently")
)

// StatusCount is one row of the per-status aggregation used by dashboards.
type StatusCount struct {
	Status entity.DrugStatus
	Count  int64
}

// DrugRepository defines the interface for drug-related database operations.
type DrugRepository interface {
	// CreateDrug persists a new drug record.
	CreateDrug(ctx context.Context, drug *entity.Drug) error

	// FindDrugByID retrieves a drug by its internal primary key.
	FindDrugByID(ctx context.Context, id uuid.UUID) (*entity.Drug, error)

	// FindDrugByCode retrieves a drug by its verification code.
	FindDrugByCode(ctx context.Context, code string) (*entity.Drug, error)

	// FindDrugsByManufacturer retrieves all drugs owned by a manufacturer,
	// newest first.
	FindDrugsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) ([]*entity.Drug, error)

	// FindAllDrugs retrieves every drug, newest first.
	FindAllDrugs(ctx context.Context) ([]*entity.Drug, error)

	// UpdateStatusCAS performs an optimistic compare-and-set of the drug's
	// status: the write only lands if the stored status still equals from.
	// Returns ErrStatusConflict when the drug exists but the status moved,
	// ErrDrugNotFound when the drug does not exist.
	UpdateStatusCAS(ctx context.Context, id uuid.UUID, from, to entity.DrugStatus) error

	// DeleteDrug hard-removes a drug record.
	DeleteDrug(ctx context.Context, id uuid.UUID) error

	// CountDrugsByStatus aggregates drug counts per status.
	CountDrugsByStatus(ctx context.Context) ([]StatusCount, error)
}
