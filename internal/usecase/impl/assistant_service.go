package impl

import (
	"context"
	"fmt"
	"log/slog"

	"meditrack/internal/domain/entity"
	"meditrack/internal/domain/repository"
	"meditrack/internal/domain/service"
	"meditrack/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Fallback strings returned when the gateway is unreachable or the drug is
// unknown. The frontend renders these verbatim.
const (
	missingDrugReply  = "Unable to find drug information for verification."
	assistantErrReply = "I apologize, but I encountered an error. Please try again."
	chatHistoryWindow = 10
)

// assistantService implements the AssistantUsecase interface.
type assistantService struct {
	explainer   service.ExplanationService
	drugRepo    repository.DrugRepository
	scanLogRepo repository.ScanLogRepository
	alertRepo   repository.AlertRepository
	logger      *slog.Logger
}

// AssistantServiceParams holds dependencies for AssistantService, injected by Fx.
type AssistantServiceParams struct {
	fx.In

	Explainer   service.ExplanationService
	DrugRepo    repository.DrugRepository
	ScanLogRepo repository.ScanLogRepository
	AlertRepo   repository.AlertRepository
	Logger      *slog.Logger
}

// NewAssistantService is the constructor for assistantService.
func NewAssistantService(params AssistantServiceParams) usecase.AssistantUsecase {
	return &assistantService{
		explainer:   params.Explainer,
		drugRepo:    params.DrugRepo,
		scanLogRepo: params.ScanLogRepo,
		alertRepo:   params.AlertRepo,
		logger:      params.Logger,
	}
}

// Explain generates prose about one drug. It never returns an error to the
// caller: a missing drug or a gateway failure degrades to a fixed template.
func (srv *assistantService) Explain(ctx context.Context, input *usecase.ExplainInput) (string, error) {
	drug, err := srv.drugRepo.FindDrugByID(ctx, input.DrugID)
	if err != nil {
		if !errors.Is(err, repository.ErrDrugNotFound) {
			srv.logger.Warn("Failed to load drug for explanation",
				slog.Any("drugID", input.DrugID),
				slog.Any("error", err),
			)
		}

		return missingDrugReply, nil
	}

	dc := srv.buildContext(ctx, drug)

	var text string
	switch input.Type {
	case usecase.ExplainTypeVerify:
		text, err = srv.explainer.AssessAuthenticity(ctx, dc)
	default:
		text, err = srv.explainer.ExplainAction(ctx, dc, input.Action, input.Role)
	}
	if err != nil || text == "" {
		if err != nil {
			srv.logger.Warn("Explanation gateway unavailable",
				slog.String("type", input.Type),
				slog.Any("error", err),
			)
		}

		return srv.fallback(input.Type, drug), nil
	}

	return text, nil
}

// Chat answers a free-form question, grounded on a drug when one is named.
func (srv *assistantService) Chat(ctx context.Context, input *usecase.ChatInput) (string, error) {
	var dc service.DrugContext
	if input.DrugID != nil {
		if drug, err := srv.drugRepo.FindDrugByID(ctx, *input.DrugID); err == nil {
			dc = srv.buildContext(ctx, drug)
		}
	}

	history := input.History
	if len(history) > chatHistoryWindow {
		history = history[len(history)-chatHistoryWindow:]
	}

	reply, err := srv.explainer.Chat(ctx, input.Message, dc, history)
	if err != nil || reply == "" {
		if err != nil {
			srv.logger.Warn("Chat gateway unavailable", slog.Any("error", err))
		}

		return assistantErrReply, nil
	}

	return reply, nil
}

// buildContext loads the drug's history and alerts best-effort. Load
// failures leave the slices nil; the prompt simply carries less grounding.
func (srv *assistantService) buildContext(ctx context.Context, drug *entity.Drug) service.DrugContext {
	dc := service.DrugContext{Drug: drug}
	if history, err := srv.scanLogRepo.FindScanLogsByDrug(ctx, drug.ID); err == nil {
		dc.History = history
	}
	if alerts, err := srv.alertRepo.FindAlertsByDrug(ctx, drug.ID); err == nil {
		dc.Alerts = alerts
	}

	return dc
}

func (srv *assistantService) fallback(explainType string, drug *entity.Drug) string {
	if explainType == usecase.ExplainTypeVerify {
		return fmt.Sprintf("Drug verification completed for %s. Current status: %s.",
			drug.DrugName, drug.Status)
	}

	return fmt.Sprintf("Drug %s (Batch: %s) status updated to %s. The supply chain record has been updated accordingly.",
		drug.DrugName, drug.BatchNumber, drug.Status)
}
