package entity

import (
	"time"

	"github.com/google/uuid"
)

// Common alert type tags. AlertType is free-form; these are the values the
// dashboards know how to render.
const (
	AlertTypeDuplicateScan      = "duplicate-scan"
	AlertTypeExpired            = "expired"
	AlertTypeUnregisteredOrigin = "unregistered-origin"
	AlertTypeCounterfeit        = "counterfeit"
)

// Alert is a flagged anomaly tied to a drug. Alerts are decoupled from the
// custody status: creating one never changes Drug.Status by itself. The UI
// bundles alert creation with a flagged transition by convention.
type Alert struct {
	ID          uuid.UUID
	DrugID      uuid.UUID
	AlertType   string // Free-form category tag.
	Description string
	Resolved    bool // Manual flip; no further workflow.
	CreatedAt   time.Time
}
