// Package service defines interfaces for core, stateless domain logic.
package service

import (
	"context"

	"meditrack/internal/domain/entity"
)

// ChatTurn is one prior turn of an assistant conversation.
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// DrugContext bundles everything the assistant may ground a response on.
// History and Alerts may be nil when the drug has no recorded activity.
type DrugContext struct {
	Drug    *entity.Drug
	History []*entity.ScanLog
	Alerts  []*entity.Alert
}

// ExplanationService is the boundary to the hosted LLM gateway. It is
// decorative only: callers must treat every failure as non-fatal and
// substitute a deterministic templated string. Its unavailability must never
// block a status transition or a verification lookup.
type ExplanationService interface {
	// ExplainAction generates a short explanation of a custody action,
	// e.g. "Status updated to distributed" performed by a distributor.
	ExplainAction(ctx context.Context, dc DrugContext, action string, role entity.Role) (string, error)

	// AssessAuthenticity generates a brief verification assessment of the
	// drug's recorded history.
	AssessAuthenticity(ctx context.Context, dc DrugContext) (string, error)

	// Chat answers a free-form question, grounded on the drug context when
	// one is provided. At most the last ten turns of history are forwarded.
	Chat(ctx context.Context, message string, dc DrugContext, history []ChatTurn) (string, error)
}
