package usecase

import (
	"context"

	"meditrack/internal/domain/entity"
	"meditrack/internal/domain/service"

	"github.com/google/uuid"
)

// Explanation request flavors, mirroring the gateway contract.
const (
	ExplainTypeExplain = "explain"
	ExplainTypeVerify  = "verify"
)

// ExplainInput asks for generated prose about one drug.
type ExplainInput struct {
	Type   string // "explain" for an action explanation, "verify" for an assessment.
	DrugID uuid.UUID
	Action string      // The triggering action, e.g. "Status updated to sold".
	Role   entity.Role // The acting role, informational only.
}

// ChatInput is one conversational turn with optional drug/alert grounding.
type ChatInput struct {
	Message string
	DrugID  *uuid.UUID
	AlertID *uuid.UUID

	// History holds prior turns; only the last ten are forwarded upstream.
	History []service.ChatTurn
}

// AssistantUsecase fronts the explanation gateway. Both operations always
// return usable prose: every upstream failure is swallowed and replaced
// with a deterministic fallback string, never an error.
type AssistantUsecase interface {
	// Explain generates prose for a drug action or verification assessment.
	Explain(ctx context.Context, input *ExplainInput) (string, error)

	// Chat answers a free-form question about the supply chain.
	Chat(ctx context.Context, input *ChatInput) (string, error)
}
