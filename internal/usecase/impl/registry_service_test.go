package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"meditrack/internal/domain/entity"
	domainerrors "meditrack/internal/domain/errors"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registryFixture struct {
	drugRepo    *memDrugRepo
	scanLogRepo *memScanLogRepo
	alertRepo   *memAlertRepo
	svc         usecase.RegistryUsecase
}

func newRegistryFixture() *registryFixture {
	f := &registryFixture{
		drugRepo:    newMemDrugRepo(),
		scanLogRepo: newMemScanLogRepo(),
		alertRepo:   newMemAlertRepo(),
	}
	tx := &memTxManager{drugRepo: f.drugRepo, scanLogRepo: f.scanLogRepo, alertRepo: f.alertRepo}
	f.svc = NewRegistryService(RegistryServiceParams{
		TxManager:   tx,
		DrugRepo:    f.drugRepo,
		ScanLogRepo: f.scanLogRepo,
		AlertRepo:   f.alertRepo,
		QRCodeSvc:   stubQRCode{},
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return f
}

func TestRegisterDrug(t *testing.T) {
	f := newRegistryFixture()
	manufacturerID := uuid.New()

	drug, err := f.svc.RegisterDrug(context.Background(), &usecase.RegisterDrugInput{
		DrugName:       "Amoxicillin 500mg",
		BatchNumber:    "AMX-2025-001",
		ExpiryDate:     time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
		ManufacturerID: manufacturerID,
	})
	require.NoError(t, err)
	require.NotNil(t, drug)

	assert.Equal(t, entity.StatusCreated, drug.Status)
	assert.Regexp(t, `^MED-\d+-[0-9a-z]{9}$`, drug.VerificationCode)
	assert.Equal(t, manufacturerID, drug.ManufacturerID)

	// Registration writes the initial scan log entry in the same transaction.
	logs, err := f.scanLogRepo.FindScanLogsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.RoleManufacturer, logs[0].Role)
	assert.Equal(t, "Manufacturing Facility", logs[0].Location)
	assert.Equal(t, "created", logs[0].VerificationResult)
	assert.Equal(t, "Drug registered in the system by manufacturer.", logs[0].Explanation)
	require.NotNil(t, logs[0].ScannedByUserID)
	assert.Equal(t, manufacturerID, *logs[0].ScannedByUserID)
}

func TestRegisterDrug_UniqueCodes(t *testing.T) {
	f := newRegistryFixture()
	manufacturerID := uuid.New()

	seen := make(map[string]bool)
	for range 20 {
		drug, err := f.svc.RegisterDrug(context.Background(), &usecase.RegisterDrugInput{
			DrugName:       "Ibuprofen 200mg",
			BatchNumber:    "IBU-001",
			ExpiryDate:     time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			ManufacturerID: manufacturerID,
		})
		require.NoError(t, err)
		assert.False(t, seen[drug.VerificationCode])
		seen[drug.VerificationCode] = true
	}
}

func TestListDrugsByManufacturer(t *testing.T) {
	f := newRegistryFixture()
	mine := uuid.New()
	other := uuid.New()

	for i, manufacturerID := range []uuid.UUID{mine, other, mine} {
		_, err := f.svc.RegisterDrug(context.Background(), &usecase.RegisterDrugInput{
			DrugName:       "Drug",
			BatchNumber:    string(rune('A' + i)),
			ExpiryDate:     time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			ManufacturerID: manufacturerID,
		})
		require.NoError(t, err)
	}

	drugs, err := f.svc.ListDrugsByManufacturer(context.Background(), mine)
	require.NoError(t, err)
	require.Len(t, drugs, 2)
	for _, drug := range drugs {
		assert.Equal(t, mine, drug.ManufacturerID)
	}

	all, err := f.svc.ListAllDrugs(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteDrug_Cascades(t *testing.T) {
	f := newRegistryFixture()

	drug, err := f.svc.RegisterDrug(context.Background(), &usecase.RegisterDrugInput{
		DrugName:       "Paracetamol 500mg",
		BatchNumber:    "PAR-001",
		ExpiryDate:     time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		ManufacturerID: uuid.New(),
	})
	require.NoError(t, err)

	err = f.alertRepo.CreateAlert(context.Background(), &entity.Alert{
		ID:          uuid.New(),
		DrugID:      drug.ID,
		AlertType:   entity.AlertTypeDuplicateScan,
		Description: "Scanned twice in two cities",
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteDrug(context.Background(), drug.ID))

	_, err = f.drugRepo.FindDrugByID(context.Background(), drug.ID)
	assert.Error(t, err)

	logs, err := f.scanLogRepo.FindScanLogsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)

	alerts, err := f.alertRepo.FindAlertsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDeleteDrug_NotFound(t *testing.T) {
	f := newRegistryFixture()

	err := f.svc.DeleteDrug(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrDrugNotFound)
}

func TestVerificationQR(t *testing.T) {
	f := newRegistryFixture()

	drug, err := f.svc.RegisterDrug(context.Background(), &usecase.RegisterDrugInput{
		DrugName:       "Aspirin 100mg",
		BatchNumber:    "ASP-001",
		ExpiryDate:     time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		ManufacturerID: uuid.New(),
	})
	require.NoError(t, err)

	png, err := f.svc.VerificationQR(context.Background(), drug.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	_, err = f.svc.VerificationQR(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrDrugNotFound)
}

func TestStats(t *testing.T) {
	f := newRegistryFixture()
	manufacturerID := uuid.New()

	for range 3 {
		_, err := f.svc.RegisterDrug(context.Background(), &usecase.RegisterDrugInput{
			DrugName:       "Amoxicillin 500mg",
			BatchNumber:    "AMX-001",
			ExpiryDate:     time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			ManufacturerID: manufacturerID,
		})
		require.NoError(t, err)
	}

	err := f.alertRepo.CreateAlert(context.Background(), &entity.Alert{
		ID:        uuid.New(),
		DrugID:    uuid.New(),
		AlertType: entity.AlertTypeExpired,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalDrugs)
	assert.Equal(t, int64(3), stats.StatusCounts[entity.StatusCreated])
	// Zero-valued statuses are still present in the map.
	assert.Contains(t, stats.StatusCounts, entity.StatusFlagged)
	assert.Equal(t, int64(0), stats.StatusCounts[entity.StatusFlagged])
	assert.Equal(t, int64(3), stats.TotalScans)
	assert.Equal(t, int64(3), stats.RoleCounts[entity.RoleManufacturer])
	assert.Equal(t, int64(1), stats.UnresolvedAlerts)
}

func TestRecentScans(t *testing.T) {
	f := newRegistryFixture()
	manufacturerID := uuid.New()

	var last *entity.Drug
	for _, name := range []string{"Amoxicillin 500mg", "Aspirin 100mg", "Ibuprofen 200mg"} {
		drug, err := f.svc.RegisterDrug(context.Background(), &usecase.RegisterDrugInput{
			DrugName:       name,
			BatchNumber:    "B-001",
			ExpiryDate:     time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
			ManufacturerID: manufacturerID,
		})
		require.NoError(t, err)
		last = drug
	}

	logs, err := f.svc.RecentScans(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	// Newest first.
	assert.Equal(t, last.ID, logs[0].DrugID)

	// A non-positive limit falls back to the default window.
	logs, err = f.svc.RecentScans(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, logs, 3)
}
