package usecase

import (
	"context"

	"meditrack/internal/domain/entity"

	"github.com/google/uuid"
)

// CreateAlertInput carries a manually raised anomaly report.
type CreateAlertInput struct {
	DrugID      uuid.UUID
	AlertType   string
	Description string
}

// AlertUsecase manages the alert log. Alerts are decoupled from the custody
// status: creating one never forces a transition.
type AlertUsecase interface {
	// CreateAlert records a new unresolved alert and publishes an alert
	// event best-effort.
	CreateAlert(ctx context.Context, input *CreateAlertInput) (*entity.Alert, error)

	// ListAlertsByDrug returns the drug's alerts, newest first.
	ListAlertsByDrug(ctx context.Context, drugID uuid.UUID) ([]*entity.Alert, error)

	// ListUnresolvedAlerts returns all unresolved alerts, newest first.
	ListUnresolvedAlerts(ctx context.Context) ([]*entity.Alert, error)

	// ResolveAlert flips the resolved flag. No further workflow.
	ResolveAlert(ctx context.Context, alertID uuid.UUID) error
}
