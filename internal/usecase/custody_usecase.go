package usecase

import (
	"context"

	"meditrack/internal/domain/entity"

	"github.com/google/uuid"
)

// AdvanceStatusInput carries one custody transfer request.
type AdvanceStatusInput struct {
	DrugID    uuid.UUID
	NewStatus entity.DrugStatus

	// ActorID is nil for anonymous actions; custody transfers always carry
	// one in practice.
	ActorID *uuid.UUID

	Role     entity.Role
	Location string
}

// FlagDrugInput bundles the alert that accompanies a flagged transition.
type FlagDrugInput struct {
	DrugID      uuid.UUID
	ActorID     *uuid.UUID
	Role        entity.Role
	Location    string
	AlertType   string
	Description string
}

// CustodyUsecase drives the drug custody state machine. Transitions are
// validated against the entity transition table, written with optimistic
// concurrency (compare-and-set on the observed status), and each successful
// transition appends exactly one scan log entry.
type CustodyUsecase interface {
	// AdvanceStatus moves a drug to the target status on behalf of the
	// acting role. Returns the updated drug.
	AdvanceStatus(ctx context.Context, input *AdvanceStatusInput) (*entity.Drug, error)

	// FlagDrug creates an alert and moves the drug to flagged in one call.
	// The alert lands even if a concurrent flag wins the status race.
	FlagDrug(ctx context.Context, input *FlagDrugInput) (*entity.Drug, error)
}
