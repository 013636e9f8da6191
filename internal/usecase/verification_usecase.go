package usecase

import (
	"context"

	"meditrack/internal/domain/entity"
)

// VerificationResult is the public answer to "is this drug authentic".
// Drug is nil when the code resolves to nothing; the caller must present
// that as a potential counterfeit signal, not a generic error.
type VerificationResult struct {
	Drug        *entity.Drug      `json:"drug"`
	ScanLogs    []*entity.ScanLog `json:"scan_logs"`
	Alerts      []*entity.Alert   `json:"alerts"`
	IsAuthentic bool              `json:"is_authentic"`
}

// VerificationUsecase is the public, unauthenticated lookup path. Every
// call, including repeated lookups of the same code, appends one new
// consumer scan log entry; there is no deduplication window, so the audit
// trail records each individual view.
type VerificationUsecase interface {
	// VerifyByCode resolves a verification code to the drug, its full event
	// history and alerts, records the consumer view, and reports
	// authenticity. An unknown code returns an empty result with Drug nil
	// and no error.
	VerifyByCode(ctx context.Context, code string) (*VerificationResult, error)
}
