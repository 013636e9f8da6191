package impl

import (
	"context"
	"sort"
	"sync"
	"time"

	"meditrack/internal/domain/entity"
	"meditrack/internal/domain/repository"
	"meditrack/internal/domain/service"
	"meditrack/internal/errors"

	"github.com/google/uuid"
)

// In-memory repository fakes. They honor the same sentinel errors and
// ordering contracts as the postgres implementations so the services can be
// exercised without a database.

type memDrugRepo struct {
	mu    sync.Mutex
	drugs map[uuid.UUID]*entity.Drug
	order []uuid.UUID

	// beforeCAS, when set, runs before each UpdateStatusCAS. Tests use it
	// to slip a concurrent write between a service's read and its write.
	beforeCAS func()
}

func newMemDrugRepo() *memDrugRepo {
	return &memDrugRepo{drugs: make(map[uuid.UUID]*entity.Drug)}
}

func (r *memDrugRepo) CreateDrug(_ context.Context, drug *entity.Drug) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.drugs {
		if d.VerificationCode == drug.VerificationCode {
			return repository.ErrDuplicateVerificationCode
		}
	}
	copied := *drug
	r.drugs[drug.ID] = &copied
	r.order = append(r.order, drug.ID)

	return nil
}

func (r *memDrugRepo) FindDrugByID(_ context.Context, id uuid.UUID) (*entity.Drug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	drug, ok := r.drugs[id]
	if !ok {
		return nil, repository.ErrDrugNotFound
	}
	copied := *drug

	return &copied, nil
}

func (r *memDrugRepo) FindDrugByCode(_ context.Context, code string) (*entity.Drug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, drug := range r.drugs {
		if drug.VerificationCode == code {
			copied := *drug

			return &copied, nil
		}
	}

	return nil, repository.ErrDrugNotFound
}

func (r *memDrugRepo) FindDrugsByManufacturer(_ context.Context, manufacturerID uuid.UUID) ([]*entity.Drug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Drug
	for i := len(r.order) - 1; i >= 0; i-- {
		drug := r.drugs[r.order[i]]
		if drug != nil && drug.ManufacturerID == manufacturerID {
			copied := *drug
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (r *memDrugRepo) FindAllDrugs(_ context.Context) ([]*entity.Drug, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Drug
	for i := len(r.order) - 1; i >= 0; i-- {
		if drug := r.drugs[r.order[i]]; drug != nil {
			copied := *drug
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (r *memDrugRepo) UpdateStatusCAS(_ context.Context, id uuid.UUID, from, to entity.DrugStatus) error {
	if r.beforeCAS != nil {
		r.beforeCAS()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	drug, ok := r.drugs[id]
	if !ok {
		return repository.ErrDrugNotFound
	}
	if drug.Status != from {
		return repository.ErrStatusConflict
	}
	drug.Status = to

	return nil
}

func (r *memDrugRepo) DeleteDrug(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.drugs[id]; !ok {
		return repository.ErrDrugNotFound
	}
	delete(r.drugs, id)

	return nil
}

func (r *memDrugRepo) CountDrugsByStatus(_ context.Context) ([]repository.StatusCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[entity.DrugStatus]int64)
	for _, drug := range r.drugs {
		counts[drug.Status]++
	}
	out := make([]repository.StatusCount, 0, len(counts))
	for status, count := range counts {
		out = append(out, repository.StatusCount{Status: status, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })

	return out, nil
}

type memScanLogRepo struct {
	mu   sync.Mutex
	logs []*entity.ScanLog
	seq  int64

	appendErr error
}

func newMemScanLogRepo() *memScanLogRepo {
	return &memScanLogRepo{}
}

func (r *memScanLogRepo) AppendScanLog(_ context.Context, log *entity.ScanLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	r.seq++
	copied := *log
	copied.Seq = r.seq
	r.logs = append(r.logs, &copied)

	return nil
}

func (r *memScanLogRepo) FindScanLogsByDrug(_ context.Context, drugID uuid.UUID) ([]*entity.ScanLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ScanLog
	for _, log := range r.logs {
		if log.DrugID == drugID {
			copied := *log
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ScanTime.Equal(out[j].ScanTime) {
			return out[i].Seq < out[j].Seq
		}

		return out[i].ScanTime.Before(out[j].ScanTime)
	})

	return out, nil
}

func (r *memScanLogRepo) FindRecentScanLogs(_ context.Context, limit int) ([]*entity.ScanLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ScanLog
	for i := len(r.logs) - 1; i >= 0 && len(out) < limit; i-- {
		copied := *r.logs[i]
		out = append(out, &copied)
	}

	return out, nil
}

func (r *memScanLogRepo) DeleteScanLogsByDrug(_ context.Context, drugID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.logs[:0]
	for _, log := range r.logs {
		if log.DrugID != drugID {
			kept = append(kept, log)
		}
	}
	r.logs = kept

	return nil
}

func (r *memScanLogRepo) CountScanLogsByRole(_ context.Context) ([]repository.RoleCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[entity.Role]int64)
	for _, log := range r.logs {
		counts[log.Role]++
	}
	out := make([]repository.RoleCount, 0, len(counts))
	for role, count := range counts {
		out = append(out, repository.RoleCount{Role: role, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })

	return out, nil
}

func (r *memScanLogRepo) CountScanLogs(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return int64(len(r.logs)), nil
}

type memAlertRepo struct {
	mu     sync.Mutex
	alerts []*entity.Alert
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{}
}

func (r *memAlertRepo) CreateAlert(_ context.Context, alert *entity.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *alert
	r.alerts = append(r.alerts, &copied)

	return nil
}

func (r *memAlertRepo) FindAlertByID(_ context.Context, id uuid.UUID) (*entity.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, alert := range r.alerts {
		if alert.ID == id {
			copied := *alert

			return &copied, nil
		}
	}

	return nil, repository.ErrAlertNotFound
}

func (r *memAlertRepo) FindAlertsByDrug(_ context.Context, drugID uuid.UUID) ([]*entity.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Alert
	for i := len(r.alerts) - 1; i >= 0; i-- {
		if r.alerts[i].DrugID == drugID {
			copied := *r.alerts[i]
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (r *memAlertRepo) FindUnresolvedAlerts(_ context.Context) ([]*entity.Alert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Alert
	for i := len(r.alerts) - 1; i >= 0; i-- {
		if !r.alerts[i].Resolved {
			copied := *r.alerts[i]
			out = append(out, &copied)
		}
	}

	return out, nil
}

func (r *memAlertRepo) ResolveAlert(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, alert := range r.alerts {
		if alert.ID == id {
			alert.Resolved = true

			return nil
		}
	}

	return repository.ErrAlertNotFound
}

func (r *memAlertRepo) DeleteAlertsByDrug(_ context.Context, drugID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.alerts[:0]
	for _, alert := range r.alerts {
		if alert.DrugID != drugID {
			kept = append(kept, alert)
		}
	}
	r.alerts = kept

	return nil
}

func (r *memAlertRepo) CountUnresolvedAlerts(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, alert := range r.alerts {
		if !alert.Resolved {
			count++
		}
	}

	return count, nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memUserRepo) CreateUser(_ context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	copied := *user
	r.users[user.ID] = &copied

	return nil
}

func (r *memUserRepo) FindUserByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (r *memUserRepo) FindUserByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

// memTxManager runs the function directly against the shared in-memory
// repositories; there is no rollback.
type memTxManager struct {
	drugRepo    *memDrugRepo
	scanLogRepo *memScanLogRepo
	alertRepo   *memAlertRepo
}

func (m *memTxManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(m)
}

func (m *memTxManager) DrugRepo() repository.DrugRepository       { return m.drugRepo }
func (m *memTxManager) ScanLogRepo() repository.ScanLogRepository { return m.scanLogRepo }
func (m *memTxManager) AlertRepo() repository.AlertRepository     { return m.alertRepo }

// stubExplainer returns a canned reply or error for every operation and
// records the inputs it saw.
type stubExplainer struct {
	reply string
	err   error

	lastAction  string
	lastHistory []service.ChatTurn
}

func (s *stubExplainer) ExplainAction(_ context.Context, _ service.DrugContext, action string, _ entity.Role) (string, error) {
	s.lastAction = action

	return s.reply, s.err
}

func (s *stubExplainer) AssessAuthenticity(_ context.Context, _ service.DrugContext) (string, error) {
	return s.reply, s.err
}

func (s *stubExplainer) Chat(_ context.Context, _ string, _ service.DrugContext, history []service.ChatTurn) (string, error) {
	s.lastHistory = history

	return s.reply, s.err
}

type stubPublisher struct {
	mu     sync.Mutex
	events []*service.AlertEvent
	err    error
}

func (s *stubPublisher) PublishAlertEvent(_ context.Context, event *service.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)

	return nil
}

func (s *stubPublisher) Close() error { return nil }

type stubQRCode struct{}

func (stubQRCode) GenerateVerificationQR(_ string) ([]byte, error) {
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (stubQRCode) VerificationURL(code string) string {
	return "https://meditrack.example.com/verify/" + code
}

type stubHasher struct{}

func (stubHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}

	return "hashed:" + password, nil
}

func (stubHasher) Check(password, hash string) bool {
	return hash == "hashed:"+password
}

type stubTokenService struct{}

func (stubTokenService) GenerateTokens(userID uuid.UUID, role entity.Role) (string, string, error) {
	return "access-" + userID.String() + "-" + role.String(), "refresh-" + userID.String(), nil
}

func (stubTokenService) ValidateAccessToken(_ string) (*service.Claims, error) {
	return nil, errors.New("not implemented")
}

func (stubTokenService) GetRefreshTokenDuration() time.Duration {
	return 24 * time.Hour
}
