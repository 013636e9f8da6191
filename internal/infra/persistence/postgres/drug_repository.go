// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
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

// drugRepository implements the repository.DrugRepository interface using GORM.
type drugRepository struct {
	db *gorm.DB
}

// NewDrugRepository is the constructor for drugRepository.
func NewDrugRepository(db *gorm.DB) repository.DrugRepository {
	return &drugRepository{
		db: db,
	}
}

// CreateDrug persists a new drug record.
func (repo *drugRepository) CreateDrug(ctx context.Context, drug *entity.Drug) error {
	drugM := fromDrugDomain(drug)

	if err := repo.db.WithContext(ctx).Create(drugM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateVerificationCode
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrDrugCreationFailed.WrapMessage("missing required drug information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create drug")
	}

	drug.CreatedAt = drugM.CreatedAt
	drug.UpdatedAt = drugM.UpdatedAt

	return nil
}

// FindDrugByID retrieves a drug by its internal primary key.
func (repo *drugRepository) FindDrugByID(ctx context.Context, id uuid.UUID) (*entity.Drug, error) {
	var drugM model.DrugModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&drugM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDrugNotFound
		}

		return nil, errors.Wrap(err, "failed to find drug by ID")
	}

	return toDrugDomain(&drugM), nil
}

// FindDrugByCode retrieves a drug by its verification code.
func (repo *drugRepository) FindDrugByCode(ctx context.Context, code string) (*entity.Drug, error) {
	var drugM model.DrugModel

	if err := repo.db.WithContext(ctx).
		Where("verification_code = ?", code).
		First(&drugM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrDrugNotFound
		}

		return nil, errors.Wrap(err, "failed to find drug by verification code")
	}

	return toDrugDomain(&drugM), nil
}

// FindDrugsByManufacturer retrieves all drugs owned by a manufacturer, newest first.
func (repo *drugRepository) FindDrugsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) ([]*entity.Drug, error) {
	var drugModels []*model.DrugModel

	if err := repo.db.WithContext(ctx).
		Where("manufacturer_id = ?", manufacturerID).
		Order("created_at DESC").
		Find(&drugModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find drugs by manufacturer")
	}

	drugs := make([]*entity.Drug, 0, len(drugModels))
	for _, drugM := range drugModels {
		drugs = append(drugs, toDrugDomain(drugM))
	}

	return drugs, nil
}

// FindAllDrugs retrieves every drug, newest first.
func (repo *drugRepository) FindAllDrugs(ctx context.Context) ([]*entity.Drug, error) {
	var drugModels []*model.DrugModel

	if err := repo.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&drugModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find all drugs")
	}

	drugs := make([]*entity.Drug, 0, len(drugModels))
	for _, drugM := range drugModels {
		drugs = append(drugs, toDrugDomain(drugM))
	}

	return drugs, nil
}

// UpdateStatusCAS performs the optimistic compare-and-set status update.
// The WHERE clause carries both the id and the status the caller observed;
// zero affected rows means either the drug vanished or the status moved
// concurrently, and a follow-up existence check tells the two apart.
func (repo *drugRepository) UpdateStatusCAS(ctx context.Context, id uuid.UUID, from, to entity.DrugStatus) error {
	result := repo.db.WithContext(ctx).
		Model(&model.DrugModel{}).
		Where("id = ? AND current_status = ?", id, from.String()).
		Update("current_status", to.String())
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update drug status")
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := repo.db.WithContext(ctx).
			Model(&model.DrugModel{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return errors.Wrap(err, "failed to check drug existence after status conflict")
		}
		if count == 0 {
			return repository.ErrDrugNotFound
		}

		return repository.ErrStatusConflict
	}

	return nil
}

// DeleteDrug hard-removes a drug record.
func (repo *drugRepository) DeleteDrug(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.DrugModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete drug")
	}

	if result.RowsAffected == 0 {
		return repository.ErrDrugNotFound
	}

	return nil
}

// CountDrugsByStatus aggregates drug counts per status.
func (repo *drugRepository) CountDrugsByStatus(ctx context.Context) ([]repository.StatusCount, error) {
	var rows []struct {
		CurrentStatus string
		Count         int64
	}

	if err := repo.db.WithContext(ctx).
		Model(&model.DrugModel{}).
		Select("current_status, COUNT(*) AS count").
		Group("current_status").
		Scan(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count drugs by status")
	}

	counts := make([]repository.StatusCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, repository.StatusCount{
			Status: entity.DrugStatus(row.CurrentStatus),
			Count:  row.Count,
		})
	}

	return counts, nil
}

// --- Mapper Functions ---

// toDrugDomain converts a GORM DrugModel to a domain Drug entity.
func toDrugDomain(data *model.DrugModel) *entity.Drug {
	if data == nil {
		return nil
	}

	return &entity.Drug{
		ID:               data.ID,
		DrugName:         data.DrugName,
		BatchNumber:      data.BatchNumber,
		ExpiryDate:       data.ExpiryDate,
		ManufacturerID:   data.ManufacturerID,
		VerificationCode: data.VerificationCode,
		Status:           entity.DrugStatus(data.CurrentStatus),
		CreatedAt:        data.CreatedAt,
		UpdatedAt:        data.UpdatedAt,
	}
}

// fromDrugDomain converts a domain Drug entity to a GORM DrugModel.
func fromDrugDomain(drug *entity.Drug) *model.DrugModel {
	if drug == nil {
		return nil
	}

	return &model.DrugModel{
		ID:               drug.ID,
		DrugName:         drug.DrugName,
		BatchNumber:      drug.BatchNumber,
		ExpiryDate:       drug.ExpiryDate,
		ManufacturerID:   drug.ManufacturerID,
		VerificationCode: drug.VerificationCode,
		CurrentStatus:    drug.Status.String(),
		CreatedAt:        drug.CreatedAt,
		UpdatedAt:        drug.UpdatedAt,
	}
}
