package repository

import "context"

// RepositoryFactory creates repository instances that are all bound to the
// same database transaction.
type RepositoryFactory interface {
	// DrugRepo creates a drug repository bound to the transaction.
	DrugRepo() DrugRepository

	// ScanLogRepo creates a scan log repository bound to the transaction.
	ScanLogRepo() ScanLogRepository

	// AlertRepo creates an alert repository bound to the transaction.
	AlertRepo() AlertRepository
}

// TransactionManager runs a function within a single database transaction.
// Used where multiple writes must land or fail together: drug registration
// (drug + initial scan log) and drug deletion (drug + cascade of its scan
// logs and alerts).
type TransactionManager interface {
	// Execute runs fn inside one transaction; a returned error rolls the
	// transaction back, nil commits it.
	Execute(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}
