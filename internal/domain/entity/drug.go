package entity

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DrugStatus is the custody status of a drug batch.
type DrugStatus string

const (
	// StatusCreated is the initial status set at registration.
	StatusCreated DrugStatus = "created"
	// StatusDistributed means a distributor has taken custody.
	StatusDistributed DrugStatus = "distributed"
	// StatusInPharmacy means a pharmacy has received the batch.
	StatusInPharmacy DrugStatus = "in_pharmacy"
	// StatusSold means the batch was dispensed to a consumer.
	StatusSold DrugStatus = "sold"
	// StatusFlagged marks the batch as suspicious. Flagged is terminal:
	// no remediation transition is exposed.
	StatusFlagged DrugStatus = "flagged"
)

// String returns the string representation of the DrugStatus.
func (s DrugStatus) String() string {
	return string(s)
}

// IsValid checks if the DrugStatus is a valid value.
func (s DrugStatus) IsValid() bool {
	switch s {
	case StatusCreated, StatusDistributed, StatusInPharmacy, StatusSold, StatusFlagged:
		return true
	default:
		return false
	}
}

// transitionRule describes one legal custody transfer: the statuses it may
// start from and the roles authorized to perform it.
type transitionRule struct {
	from  []DrugStatus
	roles Roles
}

// transitions is the custody transition table, keyed by target status.
// Registration (-> created) is not in the table; it happens exactly once
// through the registry and never as a status update.
var transitions = map[DrugStatus]transitionRule{
	StatusDistributed: {
		from:  []DrugStatus{StatusCreated},
		roles: Roles{RoleDistributor},
	},
	StatusInPharmacy: {
		from:  []DrugStatus{StatusDistributed},
		roles: Roles{RolePharmacy},
	},
	StatusSold: {
		from:  []DrugStatus{StatusInPharmacy},
		roles: Roles{RolePharmacy},
	},
	StatusFlagged: {
		from:  []DrugStatus{StatusCreated, StatusDistributed, StatusInPharmacy, StatusSold},
		roles: Roles{RolePharmacy, RoleAdmin},
	},
}

// CanTransition reports whether moving a drug from one status to another is
// legal under the custody state machine, ignoring the acting role.
func CanTransition(from, to DrugStatus) bool {
	rule, ok := transitions[to]
	if !ok {
		return false
	}
	for _, f := range rule.from {
		if f == from {
			return true
		}
	}

	return false
}

// RoleMayTransition reports whether the given role is authorized to perform
// the from->to custody transfer. A transition that is illegal for every role
// returns false as well.
func RoleMayTransition(role Role, from, to DrugStatus) bool {
	if !CanTransition(from, to) {
		return false
	}

	return transitions[to].roles.Contains(role)
}

// Drug represents one physical batch under supply-chain tracking.
// The verification code is the externally exposed identity embedded in QR
// payloads; it is deliberately distinct from the primary key so it can be
// rotated without breaking internal references.
type Drug struct {
	ID               uuid.UUID  // Internal primary key.
	DrugName         string     // Display name, e.g. "Amoxicillin 500mg".
	BatchNumber      string     // Manufacturer batch identifier.
	ExpiryDate       time.Time  // Calendar date; the time component is always midnight UTC.
	ManufacturerID   uuid.UUID  // Owning manufacturer. Immutable after creation.
	VerificationCode string     // Opaque code embedded in the QR payload. Unique.
	Status           DrugStatus // Current custody status.
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsAuthentic reports whether the drug should be presented as authentic to
// a consumer. A drug is authentic exactly when it is not flagged.
func (d *Drug) IsAuthentic() bool {
	return d.Status != StatusFlagged
}

const codeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewVerificationCode generates a fresh verification code of the form
// MED-{epoch_millis}-{9 random base36 chars}. Practical collision freedom
// comes from the timestamp plus randomness; the database unique index on the
// code is the actual backstop. Consumers must treat the code as opaque.
func NewVerificationCode() string {
	var suffix strings.Builder
	suffix.Grow(9)
	for range 9 {
		suffix.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}

	return fmt.Sprintf("MED-%d-%s", time.Now().UnixMilli(), suffix.String())
}
