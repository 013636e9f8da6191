// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"meditrack/internal/domain/entity"
	domainerrors "meditrack/internal/domain/errors"
	"meditrack/internal/domain/repository"
	"meditrack/internal/domain/service"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// registrationLocation and registrationExplanation are the fixed values of
// the initial scan log entry written at registration.
const (
	registrationLocation    = "Manufacturing Facility"
	registrationExplanation = "Drug registered in the system by manufacturer."
)

// Bounds for the admin recent-activity feed.
const (
	defaultRecentScanLimit = 20
	maxRecentScanLimit     = 100
)

// registryService implements the RegistryUsecase interface.
type registryService struct {
	txManager   repository.TransactionManager
	drugRepo    repository.DrugRepository
	scanLogRepo repository.ScanLogRepository
	alertRepo   repository.AlertRepository
	qrcodeSvc   service.QRCodeService
	logger      *slog.Logger
}

// RegistryServiceParams holds dependencies for RegistryService, injected by Fx.
type RegistryServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	DrugRepo    repository.DrugRepository
	ScanLogRepo repository.ScanLogRepository
	AlertRepo   repository.AlertRepository
	QRCodeSvc   service.QRCodeService
	Logger      *slog.Logger
}

// NewRegistryService is the constructor for registryService.
func NewRegistryService(params RegistryServiceParams) usecase.RegistryUsecase {
	return &registryService{
		txManager:   params.TxManager,
		drugRepo:    params.DrugRepo,
		scanLogRepo: params.ScanLogRepo,
		alertRepo:   params.AlertRepo,
		qrcodeSvc:   params.QRCodeSvc,
		logger:      params.Logger,
	}
}

// RegisterDrug creates a drug with a fresh verification code and its initial
// scan log entry in one transaction, so a drug can never exist without its
// registration event.
func (srv *registryService) RegisterDrug(ctx context.Context, input *usecase.RegisterDrugInput) (*entity.Drug, error) {
	now := time.Now()
	drug := &entity.Drug{
		ID:               uuid.New(),
		DrugName:         input.DrugName,
		BatchNumber:      input.BatchNumber,
		ExpiryDate:       input.ExpiryDate,
		ManufacturerID:   input.ManufacturerID,
		VerificationCode: entity.NewVerificationCode(),
		Status:           entity.StatusCreated,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.DrugRepo().CreateDrug(ctx, drug); err != nil {
			if errors.Is(err, repository.ErrDuplicateVerificationCode) {
				// The timestamp+random code collided; the unique index is the
				// backstop per design. Let the caller retry.
				return domainerrors.ErrDrugCreationFailed.WrapMessage("verification code collision")
			}

			return errors.Wrap(err, "failed to create drug")
		}

		manufacturerID := input.ManufacturerID
		initialLog := &entity.ScanLog{
			ID:                 uuid.New(),
			DrugID:             drug.ID,
			ScannedByUserID:    &manufacturerID,
			Role:               entity.RoleManufacturer,
			Location:           registrationLocation,
			VerificationResult: entity.StatusCreated.String(),
			Explanation:        registrationExplanation,
			ScanTime:           now,
		}

		return repoFactory.ScanLogRepo().AppendScanLog(ctx, initialLog)
	})
	if err != nil {
		srv.logger.Error("Failed to register drug",
			slog.String("drugName", input.DrugName),
			slog.String("batchNumber", input.BatchNumber),
			slog.Any("error", err),
		)

		return nil, err
	}

	srv.logger.Info("Drug registered",
		slog.Any("drugID", drug.ID),
		slog.String("verificationCode", drug.VerificationCode),
	)

	return drug, nil
}

// ListDrugsByManufacturer retrieves the manufacturer's drugs, newest first.
func (srv *registryService) ListDrugsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) ([]*entity.Drug, error) {
	drugs, err := srv.drugRepo.FindDrugsByManufacturer(ctx, manufacturerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find drugs by manufacturer")
	}

	return drugs, nil
}

// ListAllDrugs retrieves every drug, newest first.
func (srv *registryService) ListAllDrugs(ctx context.Context) ([]*entity.Drug, error) {
	drugs, err := srv.drugRepo.FindAllDrugs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find all drugs")
	}

	return drugs, nil
}

// DeleteDrug hard-removes a drug and cascades to its scan logs and alerts
// inside one transaction, leaving no orphans.
func (srv *registryService) DeleteDrug(ctx context.Context, drugID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.ScanLogRepo().DeleteScanLogsByDrug(ctx, drugID); err != nil {
			return errors.Wrap(err, "failed to delete scan logs")
		}
		if err := repoFactory.AlertRepo().DeleteAlertsByDrug(ctx, drugID); err != nil {
			return errors.Wrap(err, "failed to delete alerts")
		}

		if err := repoFactory.DrugRepo().DeleteDrug(ctx, drugID); err != nil {
			if errors.Is(err, repository.ErrDrugNotFound) {
				return domainerrors.ErrDrugNotFound
			}

			return errors.Wrap(err, "failed to delete drug")
		}

		return nil
	})
	if err != nil {
		return err
	}

	srv.logger.Info("Drug deleted", slog.Any("drugID", drugID))

	return nil
}

// VerificationQR renders the drug's verify URL as a PNG QR code.
func (srv *registryService) VerificationQR(ctx context.Context, drugID uuid.UUID) ([]byte, error) {
	drug, err := srv.drugRepo.FindDrugByID(ctx, drugID)
	if err != nil {
		if errors.Is(err, repository.ErrDrugNotFound) {
			return nil, domainerrors.ErrDrugNotFound
		}

		return nil, errors.Wrap(err, "failed to find drug by ID")
	}

	png, err := srv.qrcodeSvc.GenerateVerificationQR(drug.VerificationCode)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate verification QR")
	}

	return png, nil
}

// RecentScans returns the latest scan log entries across all drugs. The
// limit is clamped to keep the activity feed bounded.
func (srv *registryService) RecentScans(ctx context.Context, limit int) ([]*entity.ScanLog, error) {
	if limit <= 0 {
		limit = defaultRecentScanLimit
	}
	if limit > maxRecentScanLimit {
		limit = maxRecentScanLimit
	}

	logs, err := srv.scanLogRepo.FindRecentScanLogs(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find recent scan logs")
	}

	return logs, nil
}

// Stats aggregates the dashboard counters. Every status and role appears in
// the maps even when its count is zero.
func (srv *registryService) Stats(ctx context.Context) (*usecase.DrugStats, error) {
	stats := &usecase.DrugStats{
		StatusCounts: map[entity.DrugStatus]int64{
			entity.StatusCreated:     0,
			entity.StatusDistributed: 0,
			entity.StatusInPharmacy:  0,
			entity.StatusSold:        0,
			entity.StatusFlagged:     0,
		},
		RoleCounts: map[entity.Role]int64{
			entity.RoleManufacturer: 0,
			entity.RoleDistributor:  0,
			entity.RolePharmacy:     0,
			entity.RoleConsumer:     0,
			entity.RoleAdmin:        0,
		},
	}

	statusCounts, err := srv.drugRepo.CountDrugsByStatus(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count drugs by status")
	}
	for _, sc := range statusCounts {
		if _, ok := stats.StatusCounts[sc.Status]; ok {
			stats.StatusCounts[sc.Status] = sc.Count
		}
		stats.TotalDrugs += sc.Count
	}

	roleCounts, err := srv.scanLogRepo.CountScanLogsByRole(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count scan logs by role")
	}
	for _, rc := range roleCounts {
		if _, ok := stats.RoleCounts[rc.Role]; ok {
			stats.RoleCounts[rc.Role] = rc.Count
		}
	}

	totalScans, err := srv.scanLogRepo.CountScanLogs(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count scan logs")
	}
	stats.TotalScans = totalScans

	unresolved, err := srv.alertRepo.CountUnresolvedAlerts(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count unresolved alerts")
	}
	stats.UnresolvedAlerts = unresolved

	return stats, nil
}
