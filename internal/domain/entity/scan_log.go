package entity

import (
	"time"

	"github.com/google/uuid"
)

// Verification results recorded on scan log entries that do not correspond
// to a status transition. Transition entries record the new status itself.
const (
	// ResultVerified is written for a consumer lookup of a non-flagged drug.
	ResultVerified = "verified"
	// ResultFlagged is written for a consumer lookup of a flagged drug.
	ResultFlagged = "flagged"
)

// ScanLog is one immutable, append-only observation against a drug: either
// a custody transition or a consumer verification view. Every transition
// produces exactly one entry, but not every entry is a transition.
type ScanLog struct {
	ID     uuid.UUID
	DrugID uuid.UUID

	// ScannedByUserID is nil for anonymous consumer verification views.
	ScannedByUserID *uuid.UUID

	Role     Role
	Location string

	// VerificationResult mirrors the status the drug transitioned to, or
	// "verified"/"flagged" for non-transition consumer observations.
	VerificationResult string

	// Explanation is optional human-readable prose from the assistant or a
	// deterministic fallback; empty for consumer views.
	Explanation string

	ScanTime time.Time

	// Seq is a monotonic insertion sequence used as a stable tiebreak when
	// two entries share the same scan time.
	Seq int64
}
