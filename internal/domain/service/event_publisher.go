package service

import (
	"context"
)

// AlertEvent is published whenever a drug is flagged or an alert is raised,
// so downstream consumers (regulator feeds, notification workers) can react
// without polling. Publishing is best-effort and never blocks the
// authoritative write that triggered it.
type AlertEvent struct {
	RequestID        string `json:"request_id,omitempty"` // For distributed tracing
	AlertID          string `json:"alert_id,omitempty"`
	DrugID           string `json:"drug_id"`
	VerificationCode string `json:"verification_code"`
	DrugName         string `json:"drug_name"`
	BatchNumber      string `json:"batch_number"`
	AlertType        string `json:"alert_type"`
	Description      string `json:"description"`
	Status           string `json:"status"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishAlertEvent publishes an alert event for async processing
	PublishAlertEvent(ctx context.Context, event *AlertEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
