package impl

import (
	"context"
	"log/slog"
	"time"

	"meditrack/internal/domain/entity"
	"meditrack/internal/domain/repository"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const consumerScanLocation = "Consumer Verification"

// verificationService implements the VerificationUsecase interface.
type verificationService struct {
	drugRepo    repository.DrugRepository
	scanLogRepo repository.ScanLogRepository
	alertRepo   repository.AlertRepository
	logger      *slog.Logger
}

// VerificationServiceParams holds dependencies for VerificationService, injected by Fx.
type VerificationServiceParams struct {
	fx.In

	DrugRepo    repository.DrugRepository
	ScanLogRepo repository.ScanLogRepository
	AlertRepo   repository.AlertRepository
	Logger      *slog.Logger
}

// NewVerificationService is the constructor for verificationService.
func NewVerificationService(params VerificationServiceParams) usecase.VerificationUsecase {
	return &verificationService{
		drugRepo:    params.DrugRepo,
		scanLogRepo: params.ScanLogRepo,
		alertRepo:   params.AlertRepo,
		logger:      params.Logger,
	}
}

// VerifyByCode resolves a verification code for the public lookup page.
// Every successful resolution appends one anonymous consumer scan log entry
// before the history is read back, so the caller sees their own view in the
// returned trail.
func (srv *verificationService) VerifyByCode(ctx context.Context, code string) (*usecase.VerificationResult, error) {
	drug, err := srv.drugRepo.FindDrugByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrDrugNotFound) {
			// Unknown code is an answer, not an error: the drug may be
			// counterfeit or simply unregistered.
			srv.logger.Info("Verification lookup for unknown code", slog.String("code", code))

			return &usecase.VerificationResult{
				ScanLogs:    []*entity.ScanLog{},
				Alerts:      []*entity.Alert{},
				IsAuthentic: false,
			}, nil
		}

		return nil, errors.Wrap(err, "failed to find drug by code")
	}

	result := entity.ResultVerified
	if drug.Status == entity.StatusFlagged {
		result = entity.ResultFlagged
	}

	consumerLog := &entity.ScanLog{
		ID:                 uuid.New(),
		DrugID:             drug.ID,
		Role:               entity.RoleConsumer,
		Location:           consumerScanLocation,
		VerificationResult: result,
		ScanTime:           time.Now(),
	}
	if err := srv.scanLogRepo.AppendScanLog(ctx, consumerLog); err != nil {
		return nil, errors.Wrap(err, "failed to append consumer scan log")
	}

	scanLogs, err := srv.scanLogRepo.FindScanLogsByDrug(ctx, drug.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find scan logs")
	}

	alerts, err := srv.alertRepo.FindAlertsByDrug(ctx, drug.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find alerts")
	}

	return &usecase.VerificationResult{
		Drug:        drug,
		ScanLogs:    scanLogs,
		Alerts:      alerts,
		IsAuthentic: drug.IsAuthentic(),
	}, nil
}
