package handler

import (
	"log/slog"
	"net/http"

	"meditrack/internal/delivery/http/middleware"
	"meditrack/internal/delivery/http/response"
	"meditrack/internal/domain/service"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AssistantHandlerParams holds dependencies for AssistantHandler, injected by Fx.
type AssistantHandlerParams struct {
	fx.In

	AssistantUC usecase.AssistantUsecase
	Logger      *slog.Logger
}

// AssistantHandler holds dependencies for the assistant handlers.
type AssistantHandler struct {
	assistantUC usecase.AssistantUsecase
	logger      *slog.Logger
}

// NewAssistantHandler is the constructor for AssistantHandler.
func NewAssistantHandler(params AssistantHandlerParams) *AssistantHandler {
	return &AssistantHandler{
		assistantUC: params.AssistantUC,
		logger:      params.Logger,
	}
}

// ChatRequest represents one conversational turn with optional grounding.
type ChatRequest struct {
	Message string             `json:"message" validate:"required"`
	DrugID  *uuid.UUID         `json:"drug_id,omitempty"`
	AlertID *uuid.UUID         `json:"alert_id,omitempty"`
	History []service.ChatTurn `json:"history,omitempty" validate:"omitempty,dive"`
}

// ExplainRequest represents a request for generated prose about a drug.
type ExplainRequest struct {
	Type   string    `json:"type" validate:"required,oneof=explain verify"`
	DrugID uuid.UUID `json:"drug_id" validate:"required"`
	Action string    `json:"action,omitempty"`
}

// ChatResponse is the assistant's reply envelope.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles a free-form assistant question. The endpoint is public and
// always answers with usable prose, even when the upstream gateway fails.
func (h *AssistantHandler) Chat(c echo.Context) error {
	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid chat input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	reply, err := h.assistantUC.Chat(c.Request().Context(), &usecase.ChatInput{
		Message: req.Message,
		DrugID:  req.DrugID,
		AlertID: req.AlertID,
		History: req.History,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, ChatResponse{Reply: reply}, "Assistant reply generated")
}

// Explain handles generating an explanation or authenticity assessment for
// a drug on behalf of the authenticated role.
func (h *AssistantHandler) Explain(c echo.Context) error {
	role, ok := middleware.GetRole(c)
	if !ok {
		return response.Unauthorized(c, "ROLE_UNRESOLVED", "Missing role in token")
	}

	var req ExplainRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid explain input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	reply, err := h.assistantUC.Explain(c.Request().Context(), &usecase.ExplainInput{
		Type:   req.Type,
		DrugID: req.DrugID,
		Action: req.Action,
		Role:   role,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, ChatResponse{Reply: reply}, "Explanation generated")
}
