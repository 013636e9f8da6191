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

// alertRepository implements the repository.AlertRepository interface.
type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository is the constructor for alertRepository.
func NewAlertRepository(db *gorm.DB) repository.AlertRepository {
	return &alertRepository{
		db: db,
	}
}

// CreateAlert persists a new alert with resolved=false.
func (repo *alertRepository) CreateAlert(ctx context.Context, alert *entity.Alert) error {
	alertM := fromAlertDomain(alert)
	alertM.Resolved = false

	if err := repo.db.WithContext(ctx).Create(alertM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrDrugNotFound
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required alert information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create alert")
	}

	alert.CreatedAt = alertM.CreatedAt

	return nil
}

// FindAlertByID retrieves an alert by its unique ID.
func (repo *alertRepository) FindAlertByID(ctx context.Context, id uuid.UUID) (*entity.Alert, error) {
	var alertM model.AlertModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&alertM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAlertNotFound
		}

		return nil, errors.Wrap(err, "failed to find alert by ID")
	}

	return toAlertDomain(&alertM), nil
}

// FindAlertsByDrug retrieves all alerts for a drug, newest first.
func (repo *alertRepository) FindAlertsByDrug(ctx context.Context, drugID uuid.UUID) ([]*entity.Alert, error) {
	var alertModels []*model.AlertModel

	if err := repo.db.WithContext(ctx).
		Where("drug_id = ?", drugID).
		Order("created_at DESC").
		Find(&alertModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find alerts by drug")
	}

	alerts := make([]*entity.Alert, 0, len(alertModels))
	for _, alertM := range alertModels {
		alerts = append(alerts, toAlertDomain(alertM))
	}

	return alerts, nil
}

// FindUnresolvedAlerts retrieves all unresolved alerts, newest first.
func (repo *alertRepository) FindUnresolvedAlerts(ctx context.Context) ([]*entity.Alert, error) {
	var alertModels []*model.AlertModel

	if err := repo.db.WithContext(ctx).
		Where("resolved = ?", false).
		Order("created_at DESC").
		Find(&alertModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find unresolved alerts")
	}

	alerts := make([]*entity.Alert, 0, len(alertModels))
	for _, alertM := range alertModels {
		alerts = append(alerts, toAlertDomain(alertM))
	}

	return alerts, nil
}

// ResolveAlert flips the resolved flag to true.
func (repo *alertRepository) ResolveAlert(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AlertModel{}).
		Where("id = ?", id).
		Update("resolved", true)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to resolve alert")
	}

	if result.RowsAffected == 0 {
		return repository.ErrAlertNotFound
	}

	return nil
}

// DeleteAlertsByDrug removes all alerts for a drug. Only the drug-delete
// cascade calls this.
func (repo *alertRepository) DeleteAlertsByDrug(ctx context.Context, drugID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Where("drug_id = ?", drugID).
		Delete(&model.AlertModel{}).Error; err != nil {
		return errors.Wrap(err, "failed to delete alerts by drug")
	}

	return nil
}

// CountUnresolvedAlerts returns the number of unresolved alerts.
func (repo *alertRepository) CountUnresolvedAlerts(ctx context.Context) (int64, error) {
	var count int64

	if err := repo.db.WithContext(ctx).
		Model(&model.AlertModel{}).
		Where("resolved = ?", false).
		Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count unresolved alerts")
	}

	return count, nil
}

// --- Mapper Functions ---

// toAlertDomain converts a GORM AlertModel to a domain Alert entity.
func toAlertDomain(data *model.AlertModel) *entity.Alert {
	if data == nil {
		return nil
	}

	return &entity.Alert{
		ID:          data.ID,
		DrugID:      data.DrugID,
		AlertType:   data.AlertType,
		Description: data.Description,
		Resolved:    data.Resolved,
		CreatedAt:   data.CreatedAt,
	}
}

// fromAlertDomain converts a domain Alert entity to a GORM AlertModel.
func fromAlertDomain(alert *entity.Alert) *model.AlertModel {
	if alert == nil {
		return nil
	}

	return &model.AlertModel{
		ID:          alert.ID,
		DrugID:      alert.DrugID,
		AlertType:   alert.AlertType,
		Description: alert.Description,
		Resolved:    alert.Resolved,
		CreatedAt:   alert.CreatedAt,
	}
}
