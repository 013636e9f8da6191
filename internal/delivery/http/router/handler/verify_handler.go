package handler

import (
	"log/slog"
	"net/http"

	"meditrack/internal/delivery/http/response"
	"meditrack/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// VerifyHandlerParams holds dependencies for VerifyHandler, injected by Fx.
type VerifyHandlerParams struct {
	fx.In

	VerificationUC usecase.VerificationUsecase
	Logger         *slog.Logger
}

// VerifyHandler holds dependencies for the public verification handler.
type VerifyHandler struct {
	verificationUC usecase.VerificationUsecase
	logger         *slog.Logger
}

// NewVerifyHandler is the constructor for VerifyHandler.
func NewVerifyHandler(params VerifyHandlerParams) *VerifyHandler {
	return &VerifyHandler{
		verificationUC: params.VerificationUC,
		logger:         params.Logger,
	}
}

// VerifyByCode handles the public, unauthenticated verification lookup.
// An unknown code is a 200 with a nil drug: the client presents it as a
// potential counterfeit, not as an error.
func (h *VerifyHandler) VerifyByCode(c echo.Context) error {
	code := c.Param("code")
	if code == "" {
		return response.BadRequest(c, "INVALID_INPUT", "Missing verification code")
	}

	result, err := h.verificationUC.VerifyByCode(c.Request().Context(), code)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	if result.Drug == nil {
		return response.Success(c, http.StatusOK, result, "No drug found for this code")
	}

	return response.Success(c, http.StatusOK, result, "Drug verification completed")
}
