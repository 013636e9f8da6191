package handler

import (
	"log/slog"
	"net/http"

	"meditrack/internal/delivery/http/response"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AlertHandlerParams holds dependencies for AlertHandler, injected by Fx.
type AlertHandlerParams struct {
	fx.In

	AlertUC usecase.AlertUsecase
	Logger  *slog.Logger
}

// AlertHandler holds dependencies for alert-related handlers.
type AlertHandler struct {
	alertUC usecase.AlertUsecase
	logger  *slog.Logger
}

// NewAlertHandler is the constructor for AlertHandler.
func NewAlertHandler(params AlertHandlerParams) *AlertHandler {
	return &AlertHandler{
		alertUC: params.AlertUC,
		logger:  params.Logger,
	}
}

// CreateAlertRequest represents the request body for raising an alert.
type CreateAlertRequest struct {
	DrugID      uuid.UUID `json:"drug_id" validate:"required"`
	AlertType   string    `json:"alert_type" validate:"required"`
	Description string    `json:"description" validate:"required"`
}

// CreateAlert handles raising an anomaly alert against a drug. The drug's
// custody status is untouched; flagging is a separate operation.
func (h *AlertHandler) CreateAlert(c echo.Context) error {
	var req CreateAlertRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid alert input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	alert, err := h.alertUC.CreateAlert(c.Request().Context(), &usecase.CreateAlertInput{
		DrugID:      req.DrugID,
		AlertType:   req.AlertType,
		Description: req.Description,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, alert, "Alert created successfully")
}

// ListByDrug handles listing a drug's alerts, newest first.
func (h *AlertHandler) ListByDrug(c echo.Context) error {
	drugID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid drug ID")
	}

	alerts, err := h.alertUC.ListAlertsByDrug(c.Request().Context(), drugID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, alerts, "Alerts retrieved successfully")
}

// ListUnresolved handles listing every unresolved alert.
func (h *AlertHandler) ListUnresolved(c echo.Context) error {
	alerts, err := h.alertUC.ListUnresolvedAlerts(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, alerts, "Alerts retrieved successfully")
}

// Resolve handles marking an alert as resolved.
func (h *AlertHandler) Resolve(c echo.Context) error {
	alertID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid alert ID")
	}

	if err := h.alertUC.ResolveAlert(c.Request().Context(), alertID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Alert resolved"}, "Alert resolved successfully")
}
