package repository

import (
	"context"

	"meditrack/internal/domain/entity"
	"meditrack/internal/errors"

	"github.com/google/uuid"
)

// ErrAlertNotFound is returned when an alert is not found.
var ErrAlertNotFound = errors.New("alert not found")

// AlertRepository defines the interface for alert-related database operations.
type AlertRepository interface {
	// CreateAlert persists a new alert with resolved=false.
	CreateAlert(ctx context.Context, alert *entity.Alert) error

	// FindAlertByID retrieves an alert by its unique ID.
	FindAlertByID(ctx context.Context, id uuid.UUID) (*entity.Alert, error)

	// FindAlertsByDrug retrieves all alerts for a drug, newest first.
	FindAlertsByDrug(ctx context.Context, drugID uuid.UUID) ([]*entity.Alert, error)

	// FindUnresolvedAlerts retrieves all unresolved alerts, newest first.
	FindUnresolvedAlerts(ctx context.Context) ([]*entity.Alert, error)

	// ResolveAlert flips the resolved flag to true. The only permitted
	// in-place update on an alert.
	ResolveAlert(ctx context.Context, id uuid.UUID) error

	// DeleteAlertsByDrug removes all alerts for a drug. Only called from the
	// drug-delete cascade.
	DeleteAlertsByDrug(ctx context.Context, drugID uuid.UUID) error

	// CountUnresolvedAlerts returns the number of unresolved alerts.
	CountUnresolvedAlerts(ctx context.Context) (int64, error)
}
