package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"meditrack/internal/domain/entity"
	domainerrors "meditrack/internal/domain/errors"
	"meditrack/internal/errors"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type custodyFixture struct {
	drugRepo    *memDrugRepo
	scanLogRepo *memScanLogRepo
	alertRepo   *memAlertRepo
	explainer   *stubExplainer
	publisher   *stubPublisher
	svc         usecase.CustodyUsecase
}

func newCustodyFixture() *custodyFixture {
	f := &custodyFixture{
		drugRepo:    newMemDrugRepo(),
		scanLogRepo: newMemScanLogRepo(),
		alertRepo:   newMemAlertRepo(),
		explainer:   &stubExplainer{err: errors.New("gateway down")},
		publisher:   &stubPublisher{},
	}
	f.svc = NewCustodyService(CustodyServiceParams{
		DrugRepo:    f.drugRepo,
		ScanLogRepo: f.scanLogRepo,
		AlertRepo:   f.alertRepo,
		Explainer:   f.explainer,
		Publisher:   f.publisher,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return f
}

func (f *custodyFixture) seedDrug(t *testing.T, status entity.DrugStatus) *entity.Drug {
	t.Helper()
	drug := &entity.Drug{
		ID:               uuid.New(),
		DrugName:         "Amoxicillin 500mg",
		BatchNumber:      "AMX-2025-001",
		ExpiryDate:       time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
		ManufacturerID:   uuid.New(),
		VerificationCode: entity.NewVerificationCode(),
		Status:           status,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	require.NoError(t, f.drugRepo.CreateDrug(context.Background(), drug))

	return drug
}

func TestAdvanceStatus_FullChain(t *testing.T) {
	f := newCustodyFixture()
	drug := f.seedDrug(t, entity.StatusCreated)
	distributorID := uuid.New()
	pharmacistID := uuid.New()

	steps := []struct {
		status  entity.DrugStatus
		actorID uuid.UUID
		role    entity.Role
	}{
		{entity.StatusDistributed, distributorID, entity.RoleDistributor},
		{entity.StatusInPharmacy, pharmacistID, entity.RolePharmacy},
		{entity.StatusSold, pharmacistID, entity.RolePharmacy},
	}

	for _, step := range steps {
		updated, err := f.svc.AdvanceStatus(context.Background(), &usecase.AdvanceStatusInput{
			DrugID:    drug.ID,
			NewStatus: step.status,
			ActorID:   &step.actorID,
			Role:      step.role,
			Location:  "Taipei Distribution Center",
		})
		require.NoError(t, err)
		assert.Equal(t, step.status, updated.Status)
	}

	// One scan log entry per transition, in order.
	logs, err := f.scanLogRepo.FindScanLogsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "distributed", logs[0].VerificationResult)
	assert.Equal(t, "in_pharmacy", logs[1].VerificationResult)
	assert.Equal(t, "sold", logs[2].VerificationResult)
}

func TestAdvanceStatus_FallbackExplanation(t *testing.T) {
	f := newCustodyFixture()
	drug := f.seedDrug(t, entity.StatusCreated)
	actorID := uuid.New()

	_, err := f.svc.AdvanceStatus(context.Background(), &usecase.AdvanceStatusInput{
		DrugID:    drug.ID,
		NewStatus: entity.StatusDistributed,
		ActorID:   &actorID,
		Role:      entity.RoleDistributor,
		Location:  "Warehouse 7",
	})
	require.NoError(t, err)

	logs, err := f.scanLogRepo.FindScanLogsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Drug status updated to distributed by distributor.", logs[0].Explanation)
}

func TestAdvanceStatus_GeneratedExplanation(t *testing.T) {
	f := newCustodyFixture()
	f.explainer.err = nil
	f.explainer.reply = "The batch left the manufacturer and is now in transit."
	drug := f.seedDrug(t, entity.StatusCreated)
	actorID := uuid.New()

	_, err := f.svc.AdvanceStatus(context.Background(), &usecase.AdvanceStatusInput{
		DrugID:    drug.ID,
		NewStatus: entity.StatusDistributed,
		ActorID:   &actorID,
		Role:      entity.RoleDistributor,
		Location:  "Warehouse 7",
	})
	require.NoError(t, err)

	logs, err := f.scanLogRepo.FindScanLogsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, f.explainer.reply, logs[0].Explanation)
	assert.Equal(t, "Status updated to distributed", f.explainer.lastAction)
}

func TestAdvanceStatus_InvalidTransition(t *testing.T) {
	f := newCustodyFixture()
	drug := f.seedDrug(t, entity.StatusCreated)
	actorID := uuid.New()

	// created -> sold skips the chain.
	_, err := f.svc.AdvanceStatus(context.Background(), &usecase.AdvanceStatusInput{
		DrugID:    drug.ID,
		NewStatus: entity.StatusSold,
		ActorID:   &actorID,
		Role:      entity.RolePharmacy,
		Location:  "Pharmacy",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_TRANSITION", appErr.ErrorCode())

	// No scan log is written for a rejected transfer.
	logs, lerr := f.scanLogRepo.FindScanLogsByDrug(context.Background(), drug.ID)
	require.NoError(t, lerr)
	assert.Empty(t, logs)
}

func TestAdvanceStatus_RoleForbidden(t *testing.T) {
	f := newCustodyFixture()
	drug := f.seedDrug(t, entity.StatusCreated)
	actorID := uuid.New()

	// The transition is legal but manufacturers may not perform it.
	_, err := f.svc.AdvanceStatus(context.Background(), &usecase.AdvanceStatusInput{
		DrugID:    drug.ID,
		NewStatus: entity.StatusDistributed,
		ActorID:   &actorID,
		Role:      entity.RoleManufacturer,
		Location:  "Factory",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "FORBIDDEN", appErr.ErrorCode())
}

func TestAdvanceStatus_FlaggedIsTerminal(t *testing.T) {
	f := newCustodyFixture()
	drug := f.seedDrug(t, entity.StatusFlagged)
	actorID := uuid.New()

	for _, target := range []entity.DrugStatus{
		entity.StatusDistributed, entity.StatusInPharmacy, entity.StatusSold,
	} {
		_, err := f.svc.AdvanceStatus(context.Background(), &usecase.AdvanceStatusInput{
			DrugID:    drug.ID,
			NewStatus: target,
			ActorID:   &actorID,
			Role:      entity.RoleAdmin,
			Location:  "HQ",
		})
		require.Error(t, err)
	}
}

func TestAdvanceStatus_StatusConflict(t *testing.T) {
	f := newCustodyFixture()
	drug := f.seedDrug(t, entity.StatusCreated)
	actorID := uuid.New()

	// A concurrent transfer lands between the service's read and its write.
	f.drugRepo.beforeCAS = func() {
		f.drugRepo.beforeCAS = nil
		require.NoError(t, f.drugRepo.UpdateStatusCAS(
			context.Background(), drug.ID, entity.StatusCreated, entity.StatusDistributed))
	}

	_, err := f.svc.AdvanceStatus(context.Background(), &usecase.AdvanceStatusInput{
		DrugID:    drug.ID,
		NewStatus: entity.StatusDistributed,
		ActorID:   &actorID,
		Role:      entity.RoleDistributor,
		Location:  "Warehouse",
	})
	require.Error(t, err)

	var appErr domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "STATUS_CONFLICT", appErr.ErrorCode())

	// The loser writes no scan log entry.
	logs, lerr := f.scanLogRepo.FindScanLogsByDrug(context.Background(), drug.ID)
	require.NoError(t, lerr)
	assert.Empty(t, logs)
}

func TestAdvanceStatus_DrugNotFound(t *testing.T) {
	f := newCustodyFixture()
	actorID := uuid.New()

	_, err := f.svc.AdvanceStatus(context.Background(), &usecase.AdvanceStatusInput{
		DrugID:    uuid.New(),
		NewStatus: entity.StatusDistributed,
		ActorID:   &actorID,
		Role:      entity.RoleDistributor,
		Location:  "Warehouse",
	})
	assert.ErrorIs(t, err, domainerrors.ErrDrugNotFound)
}

func TestFlagDrug(t *testing.T) {
	f := newCustodyFixture()
	drug := f.seedDrug(t, entity.StatusInPharmacy)
	pharmacistID := uuid.New()

	flagged, err := f.svc.FlagDrug(context.Background(), &usecase.FlagDrugInput{
		DrugID:      drug.ID,
		ActorID:     &pharmacistID,
		Role:        entity.RolePharmacy,
		Location:    "Downtown Pharmacy",
		AlertType:   entity.AlertTypeDuplicateScan,
		Description: "Same code scanned in two different cities",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFlagged, flagged.Status)
	assert.False(t, flagged.IsAuthentic())

	alerts, err := f.alertRepo.FindAlertsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, entity.AlertTypeDuplicateScan, alerts[0].AlertType)
	assert.False(t, alerts[0].Resolved)

	logs, err := f.scanLogRepo.FindScanLogsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "flagged", logs[0].VerificationResult)

	// Both the flag transition and the alert publish events.
	require.NotEmpty(t, f.publisher.events)
	last := f.publisher.events[len(f.publisher.events)-1]
	assert.Equal(t, alerts[0].ID.String(), last.AlertID)
	assert.Equal(t, drug.VerificationCode, last.VerificationCode)
	assert.Equal(t, "flagged", last.Status)
}

func TestFlagDrug_AlreadyFlagged(t *testing.T) {
	f := newCustodyFixture()
	drug := f.seedDrug(t, entity.StatusFlagged)
	adminID := uuid.New()

	// The alert still lands on an already-flagged drug; no new transition
	// or scan log entry is produced.
	flagged, err := f.svc.FlagDrug(context.Background(), &usecase.FlagDrugInput{
		DrugID:      drug.ID,
		ActorID:     &adminID,
		Role:        entity.RoleAdmin,
		Location:    "HQ",
		AlertType:   entity.AlertTypeCounterfeit,
		Description: "Secondary report",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFlagged, flagged.Status)

	alerts, err := f.alertRepo.FindAlertsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	logs, err := f.scanLogRepo.FindScanLogsByDrug(context.Background(), drug.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestFlagDrug_RoleForbidden(t *testing.T) {
	f := newCustodyFixture()
	drug := f.seedDrug(t, entity.StatusCreated)
	actorID := uuid.New()

	_, err := f.svc.FlagDrug(context.Background(), &usecase.FlagDrugInput{
		DrugID:      drug.ID,
		ActorID:     &actorID,
		Role:        entity.RoleDistributor,
		Location:    "Warehouse",
		AlertType:   entity.AlertTypeCounterfeit,
		Description: "Looks off",
	})
	require.Error(t, err)

	alerts, aerr := f.alertRepo.FindAlertsByDrug(context.Background(), drug.ID)
	require.NoError(t, aerr)
	assert.Empty(t, alerts)
}

func TestFlagDrug_PublishFailureDoesNotFail(t *testing.T) {
	f := newCustodyFixture()
	f.publisher.err = errors.New("broker unavailable")
	drug := f.seedDrug(t, entity.StatusInPharmacy)
	pharmacistID := uuid.New()

	flagged, err := f.svc.FlagDrug(context.Background(), &usecase.FlagDrugInput{
		DrugID:      drug.ID,
		ActorID:     &pharmacistID,
		Role:        entity.RolePharmacy,
		Location:    "Pharmacy",
		AlertType:   entity.AlertTypeExpired,
		Description: "Past expiry on shelf",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusFlagged, flagged.Status)
}
