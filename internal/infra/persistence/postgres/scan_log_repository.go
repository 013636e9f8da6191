package postgres

import (
	"context"

	"meditrack/internal/domain/entity"
	domainerrors "meditrack/internal/domain/errors"
	"meditrack/internal/domain/repository"
	"meditrack/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// scanLogRepository implements the repository.ScanLogRepository interface.
// The table is append-only; nothing here updates an existing row.
type scanLogRepository struct {
	db *gorm.DB
}

// NewScanLogRepository is the constructor for scanLogRepository.
func NewScanLogRepository(db *gorm.DB) repository.ScanLogRepository {
	return &scanLogRepository{
		db: db,
	}
}

// AppendScanLog persists a new scan log entry. Seq is assigned by the
// database sequence.
func (repo *scanLogRepository) AppendScanLog(ctx context.Context, log *entity.ScanLog) error {
	logM := fromScanLogDomain(log)

	if err := repo.db.WithContext(ctx).Create(logM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrDrugNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required scan log information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to append scan log")
	}

	log.Seq = logM.Seq

	return nil
}

// FindScanLogsByDrug retrieves all entries for a drug ordered by
// (scan_time, seq) ascending. The seq tiebreak keeps timelines stable when
// two entries land within the same timestamp granularity.
func (repo *scanLogRepository) FindScanLogsByDrug(ctx context.Context, drugID uuid.UUID) ([]*entity.ScanLog, error) {
	var logModels []*model.ScanLogModel

	if err := repo.db.WithContext(ctx).
		Where("drug_id = ?", drugID).
		Order("scan_time ASC, seq ASC").
		Find(&logModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find scan logs by drug")
	}

	logs := make([]*entity.ScanLog, 0, len(logModels))
	for _, logM := range logModels {
		logs = append(logs, toScanLogDomain(logM))
	}

	return logs, nil
}

// FindRecentScanLogs retrieves the most recent entries across all drugs,
// newest first, bounded by limit.
func (repo *scanLogRepository) FindRecentScanLogs(ctx context.Context, limit int) ([]*entity.ScanLog, error) {
	var logModels []*model.ScanLogModel

	query := repo.db.WithContext(ctx).
		Order("scan_time DESC, seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&logModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find recent scan logs")
	}

	logs := make([]*entity.ScanLog, 0, len(logModels))
	for _, logM := range logModels {
		logs = append(logs, toScanLogDomain(logM))
	}

	return logs, nil
}

// DeleteScanLogsByDrug removes all entries for a drug. Only the drug-delete
// cascade calls this.
func (repo *scanLogRepository) DeleteScanLogsByDrug(ctx context.Context, drugID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("drug_id = ?", drugID).
		Delete(&model.ScanLogModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete scan logs by drug")
	}

	return nil
}

// CountScanLogsByRole aggregates scan counts per acting role.
func (repo *scanLogRepository) CountScanLogsByRole(ctx context.Context) ([]repository.RoleCount, error) {
	var rows []struct {
		Role  string
		Count int64
	}

	if err := repo.db.WithContext(ctx).
		Model(&model.ScanLogModel{}).
		Select("role, COUNT(*) AS count").
		Group("role").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count scan logs by role")
	}

	counts := make([]repository.RoleCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, repository.RoleCount{
			Role:  entity.Role(row.Role),
			Count: row.Count,
		})
	}

	return counts, nil
}

// CountScanLogs returns the total number of entries.
func (repo *scanLogRepository) CountScanLogs(ctx context.Context) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.ScanLogModel{}).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count scan logs")
	}

	return count, nil
}

// --- Mapper Functions ---

// toScanLogDomain converts a GORM ScanLogModel to a domain ScanLog entity.
func toScanLogDomain(data *model.ScanLogModel) *entity.ScanLog {
	if data == nil {
		return nil
	}

	return &entity.ScanLog{
		ID:                 data.ID,
		DrugID:             data.DrugID,
		ScannedByUserID:    data.ScannedByUserID,
		Role:               entity.Role(data.Role),
		Location:           data.Location,
		VerificationResult: data.VerificationResult,
		Explanation:        data.Explanation,
		ScanTime:           data.ScanTime,
		Seq:                data.Seq,
	}
}

// fromScanLogDomain converts a domain ScanLog entity to a GORM ScanLogModel.
func fromScanLogDomain(log *entity.ScanLog) *model.ScanLogModel {
	if log == nil {
		return nil
	}

	return &model.ScanLogModel{
		ID:                 log.ID,
		DrugID:             log.DrugID,
		ScannedByUserID:    log.ScannedByUserID,
		Role:               log.Role.String(),
		Location:           log.Location,
		VerificationResult: log.VerificationResult,
		Explanation:        log.Explanation,
		ScanTime:           log.ScanTime,
	}
}
