package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "meditrack/internal/delivery/context"
	"meditrack/internal/domain/entity"
	domainerrors "meditrack/internal/domain/errors"
	"meditrack/internal/domain/repository"
	"meditrack/internal/domain/service"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// alertService implements the AlertUsecase interface.
type alertService struct {
	alertRepo repository.AlertRepository
	drugRepo  repository.DrugRepository
	publisher service.EventPublisher
	logger    *slog.Logger
}

// AlertServiceParams holds dependencies for AlertService, injected by Fx.
type AlertServiceParams struct {
	fx.In

	AlertRepo repository.AlertRepository
	DrugRepo  repository.DrugRepository
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewAlertService is the constructor for alertService.
func NewAlertService(params AlertServiceParams) usecase.AlertUsecase {
	return &alertService{
		alertRepo: params.AlertRepo,
		drugRepo:  params.DrugRepo,
		publisher: params.Publisher,
		logger:    params.Logger,
	}
}

// CreateAlert records a standalone anomaly report against a drug. The drug's
// custody status is untouched; flagging goes through the custody usecase.
func (srv *alertService) CreateAlert(ctx context.Context, input *usecase.CreateAlertInput) (*entity.Alert, error) {
	drug, err := srv.drugRepo.FindDrugByID(ctx, input.DrugID)
	if err != nil {
		if errors.Is(err, repository.ErrDrugNotFound) {
			return nil, domainerrors.ErrDrugNotFound
		}

		return nil, errors.Wrap(err, "failed to find drug by ID")
	}

	alert := &entity.Alert{
		ID:          uuid.New(),
		DrugID:      drug.ID,
		AlertType:   input.AlertType,
		Description: input.Description,
		CreatedAt:   time.Now(),
	}
	if err := srv.alertRepo.CreateAlert(ctx, alert); err != nil {
		return nil, errors.Wrap(err, "failed to create alert")
	}

	srv.logger.Info("Alert created",
		slog.Any("alertID", alert.ID),
		slog.Any("drugID", drug.ID),
		slog.String("alertType", alert.AlertType),
	)

	event := &service.AlertEvent{
		RequestID:        deliverycontext.GetRequestIDFromContext(ctx),
		AlertID:          alert.ID.String(),
		DrugID:           drug.ID.String(),
		VerificationCode: drug.VerificationCode,
		DrugName:         drug.DrugName,
		BatchNumber:      drug.BatchNumber,
		AlertType:        alert.AlertType,
		Description:      alert.Description,
		Status:           drug.Status.String(),
	}
	if err := srv.publisher.PublishAlertEvent(ctx, event); err != nil {
		srv.logger.Warn("Failed to publish alert event",
			slog.Any("alertID", alert.ID),
			slog.Any("error", err),
		)
	}

	return alert, nil
}

// ListAlertsByDrug returns the drug's alerts, newest first.
func (srv *alertService) ListAlertsByDrug(ctx context.Context, drugID uuid.UUID) ([]*entity.Alert, error) {
	alerts, err := srv.alertRepo.FindAlertsByDrug(ctx, drugID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find alerts by drug")
	}

	return alerts, nil
}

// ListUnresolvedAlerts returns all open alerts across the registry.
func (srv *alertService) ListUnresolvedAlerts(ctx context.Context) ([]*entity.Alert, error) {
	alerts, err := srv.alertRepo.FindUnresolvedAlerts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find unresolved alerts")
	}

	return alerts, nil
}

// ResolveAlert marks an alert handled. Resolution is bookkeeping only and
// never reactivates the drug.
func (srv *alertService) ResolveAlert(ctx context.Context, alertID uuid.UUID) error {
	if err := srv.alertRepo.ResolveAlert(ctx, alertID); err != nil {
		if errors.Is(err, repository.ErrAlertNotFound) {
			return domainerrors.ErrAlertNotFound
		}

		return errors.Wrap(err, "failed to resolve alert")
	}

	srv.logger.Info("Alert resolved", slog.Any("alertID", alertID))

	return nil
}
