package impl

import (
	"context"
	"fmt"
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

// custodyService implements the CustodyUsecase interface.
type custodyService struct {
	drugRepo    repository.DrugRepository
	scanLogRepo repository.ScanLogRepository
	alertRepo   repository.AlertRepository
	explainer   service.ExplanationService
	publisher   service.EventPublisher
	logger      *slog.Logger
}

// CustodyServiceParams holds dependencies for CustodyService, injected by Fx.
type CustodyServiceParams struct {
	fx.In

	DrugRepo    repository.DrugRepository
	ScanLogRepo repository.ScanLogRepository
	AlertRepo   repository.AlertRepository
	Explainer   service.ExplanationService
	Publisher   service.EventPublisher
	Logger      *slog.Logger
}

// NewCustodyService is the constructor for custodyService.
func NewCustodyService(params CustodyServiceParams) usecase.CustodyUsecase {
	return &custodyService{
		drugRepo:    params.DrugRepo,
		scanLogRepo: params.ScanLogRepo,
		alertRepo:   params.AlertRepo,
		explainer:   params.Explainer,
		publisher:   params.Publisher,
		logger:      params.Logger,
	}
}

// AdvanceStatus moves a drug along the custody chain. The write is a
// compare-and-set on the status the caller observed, so two concurrent
// transfers cannot both succeed; the loser gets ErrStatusConflict.
func (srv *custodyService) AdvanceStatus(ctx context.Context, input *usecase.AdvanceStatusInput) (*entity.Drug, error) {
	if !input.NewStatus.IsValid() {
		return nil, domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("unknown status %q", input.NewStatus))
	}

	drug, err := srv.drugRepo.FindDrugByID(ctx, input.DrugID)
	if err != nil {
		if errors.Is(err, repository.ErrDrugNotFound) {
			return nil, domainerrors.ErrDrugNotFound
		}

		return nil, errors.Wrap(err, "failed to find drug by ID")
	}

	if !entity.CanTransition(drug.Status, input.NewStatus) {
		return nil, domainerrors.ErrInvalidTransition.WithDetails(
			fmt.Sprintf("cannot move from %s to %s", drug.Status, input.NewStatus))
	}
	if !entity.RoleMayTransition(input.Role, drug.Status, input.NewStatus) {
		return nil, domainerrors.ErrForbidden.WithDetails(
			fmt.Sprintf("role %s may not move a drug from %s to %s", input.Role, drug.Status, input.NewStatus))
	}

	observed := drug.Status
	if err := srv.drugRepo.UpdateStatusCAS(ctx, drug.ID, observed, input.NewStatus); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, domainerrors.ErrStatusConflict
		}
		if errors.Is(err, repository.ErrDrugNotFound) {
			return nil, domainerrors.ErrDrugNotFound
		}

		return nil, errors.Wrap(err, "failed to update drug status")
	}

	now := time.Now()
	drug.Status = input.NewStatus
	drug.UpdatedAt = now

	explanation := srv.explainTransition(ctx, drug, input.NewStatus, input.Role)

	scanLog := &entity.ScanLog{
		ID:                 uuid.New(),
		DrugID:             drug.ID,
		ScannedByUserID:    input.ActorID,
		Role:               input.Role,
		Location:           input.Location,
		VerificationResult: input.NewStatus.String(),
		Explanation:        explanation,
		ScanTime:           now,
	}
	if err := srv.scanLogRepo.AppendScanLog(ctx, scanLog); err != nil {
		// The status is already committed; a missing log entry is a real
		// defect, so surface it rather than pretend the transfer was clean.
		return nil, errors.Wrap(err, "failed to append scan log")
	}

	srv.logger.Info("Drug status advanced",
		slog.Any("drugID", drug.ID),
		slog.String("from", observed.String()),
		slog.String("to", input.NewStatus.String()),
		slog.String("role", input.Role.String()),
	)

	if input.NewStatus == entity.StatusFlagged {
		srv.publishAlertEvent(ctx, drug, "", entity.AlertTypeCounterfeit, "Drug flagged during custody transfer")
	}

	return drug, nil
}

// FlagDrug records the alert first, then flags the drug. The alert is the
// authoritative anomaly record: it lands even when a concurrent flag wins
// the status race, in which case the transition is treated as already done.
func (srv *custodyService) FlagDrug(ctx context.Context, input *usecase.FlagDrugInput) (*entity.Drug, error) {
	drug, err := srv.drugRepo.FindDrugByID(ctx, input.DrugID)
	if err != nil {
		if errors.Is(err, repository.ErrDrugNotFound) {
			return nil, domainerrors.ErrDrugNotFound
		}

		return nil, errors.Wrap(err, "failed to find drug by ID")
	}

	if drug.Status != entity.StatusFlagged && !entity.RoleMayTransition(input.Role, drug.Status, entity.StatusFlagged) {
		return nil, domainerrors.ErrForbidden.WithDetails(
			fmt.Sprintf("role %s may not flag a drug in status %s", input.Role, drug.Status))
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

	if drug.Status != entity.StatusFlagged {
		updated, err := srv.AdvanceStatus(ctx, &usecase.AdvanceStatusInput{
			DrugID:    input.DrugID,
			NewStatus: entity.StatusFlagged,
			ActorID:   input.ActorID,
			Role:      input.Role,
			Location:  input.Location,
		})
		switch {
		case err == nil:
			drug = updated
		case errors.Is(err, domainerrors.ErrStatusConflict):
			// Someone else flagged it first; our alert still stands.
			drug, err = srv.drugRepo.FindDrugByID(ctx, input.DrugID)
			if err != nil {
				return nil, errors.Wrap(err, "failed to reload drug after status conflict")
			}
			if drug.Status != entity.StatusFlagged {
				return nil, domainerrors.ErrStatusConflict
			}
		default:
			return nil, err
		}
	}

	srv.publishAlertEvent(ctx, drug, alert.ID.String(), alert.AlertType, alert.Description)

	return drug, nil
}

// explainTransition asks the assistant for a short narrative of the change
// and falls back to a fixed template when the gateway is unavailable. It
// never fails the transfer.
func (srv *custodyService) explainTransition(ctx context.Context, drug *entity.Drug, newStatus entity.DrugStatus, role entity.Role) string {
	dc := service.DrugContext{Drug: drug}
	if history, err := srv.scanLogRepo.FindScanLogsByDrug(ctx, drug.ID); err == nil {
		dc.History = history
	}
	if alerts, err := srv.alertRepo.FindAlertsByDrug(ctx, drug.ID); err == nil {
		dc.Alerts = alerts
	}

	action := fmt.Sprintf("Status updated to %s", newStatus)
	explanation, err := srv.explainer.ExplainAction(ctx, dc, action, role)
	if err != nil || explanation == "" {
		if err != nil {
			srv.logger.Warn("Explanation unavailable, using fallback",
				slog.Any("drugID", drug.ID),
				slog.Any("error", err),
			)
		}

		return fmt.Sprintf("Drug status updated to %s by %s.", newStatus, role)
	}

	return explanation
}

// publishAlertEvent emits the alert to the event bus. Failures are logged
// and swallowed; the database is the source of truth.
func (srv *custodyService) publishAlertEvent(ctx context.Context, drug *entity.Drug, alertID, alertType, description string) {
	event := &service.AlertEvent{
		RequestID:        deliverycontext.GetRequestIDFromContext(ctx),
		AlertID:          alertID,
		DrugID:           drug.ID.String(),
		VerificationCode: drug.VerificationCode,
		DrugName:         drug.DrugName,
		BatchNumber:      drug.BatchNumber,
		AlertType:        alertType,
		Description:      description,
		Status:           drug.Status.String(),
	}
	if err := srv.publisher.PublishAlertEvent(ctx, event); err != nil {
		srv.logger.Warn("Failed to publish alert event",
			slog.Any("drugID", drug.ID),
			slog.Any("error", err),
		)
	}
}
