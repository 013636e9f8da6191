package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"meditrack/internal/delivery/http/middleware"
	"meditrack/internal/delivery/http/response"
	"meditrack/internal/domain/entity"
	"meditrack/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// DrugHandlerParams holds dependencies for DrugHandler, injected by Fx.
type DrugHandlerParams struct {
	fx.In

	RegistryUC usecase.RegistryUsecase
	CustodyUC  usecase.CustodyUsecase
	Logger     *slog.Logger
}

// DrugHandler holds dependencies for drug registry and custody handlers.
type DrugHandler struct {
	registryUC usecase.RegistryUsecase
	custodyUC  usecase.CustodyUsecase
	logger     *slog.Logger
}

// NewDrugHandler is the constructor for DrugHandler.
func NewDrugHandler(params DrugHandlerParams) *DrugHandler {
	return &DrugHandler{
		registryUC: params.RegistryUC,
		custodyUC:  params.CustodyUC,
		logger:     params.Logger,
	}
}

// RegisterDrugRequest represents the request body for registering a drug.
type RegisterDrugRequest struct {
	DrugName    string    `json:"drug_name" validate:"required"`
	BatchNumber string    `json:"batch_number" validate:"required"`
	ExpiryDate  time.Time `json:"expiry_date" validate:"required"`
}

// UpdateStatusRequest represents the request body for a custody transfer.
type UpdateStatusRequest struct {
	Status   string `json:"status" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// FlagDrugRequest represents the request body for flagging a drug.
type FlagDrugRequest struct {
	AlertType   string `json:"alert_type" validate:"required"`
	Description string `json:"description" validate:"required"`
	Location    string `json:"location" validate:"required"`
}

// RegisterDrug handles registering a new drug for the authenticated
// manufacturer. The verification code and initial scan log entry are
// created atomically with the drug.
func (h *DrugHandler) RegisterDrug(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req RegisterDrugRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid drug registration input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	drug, err := h.registryUC.RegisterDrug(c.Request().Context(), &usecase.RegisterDrugInput{
		DrugName:       req.DrugName,
		BatchNumber:    req.BatchNumber,
		ExpiryDate:     req.ExpiryDate,
		ManufacturerID: userID,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, drug, "Drug registered successfully")
}

// ListMine handles listing the authenticated manufacturer's drugs.
func (h *DrugHandler) ListMine(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	drugs, err := h.registryUC.ListDrugsByManufacturer(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, drugs, "Drugs retrieved successfully")
}

// ListAll handles listing every registered drug.
func (h *DrugHandler) ListAll(c echo.Context) error {
	drugs, err := h.registryUC.ListAllDrugs(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, drugs, "Drugs retrieved successfully")
}

// DeleteDrug handles removing a drug along with its scan logs and alerts.
func (h *DrugHandler) DeleteDrug(c echo.Context) error {
	drugID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid drug ID")
	}

	if err := h.registryUC.DeleteDrug(c.Request().Context(), drugID); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Drug deleted"}, "Drug deleted successfully")
}

// VerificationQR handles rendering a drug's public verify URL as a PNG QR code.
func (h *DrugHandler) VerificationQR(c echo.Context) error {
	drugID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid drug ID")
	}

	qrCode, err := h.registryUC.VerificationQR(c.Request().Context(), drugID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	// Return QR code as PNG image
	c.Response().Header().Set("Content-Type", "image/png")
	c.Response().Header().Set("Content-Disposition", "inline; filename=verification-qr.png")

	return c.Blob(http.StatusOK, "image/png", qrCode)
}

// RecentScans handles listing the latest scan log entries across all drugs.
func (h *DrugHandler) RecentScans(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid limit parameter")
		}
		limit = parsed
	}

	logs, err := h.registryUC.RecentScans(c.Request().Context(), limit)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, logs, "Recent scans retrieved successfully")
}

// Stats handles retrieving the dashboard counters.
func (h *DrugHandler) Stats(c echo.Context) error {
	stats, err := h.registryUC.Stats(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, stats, "Statistics retrieved successfully")
}

// UpdateStatus handles a custody transfer for the authenticated role.
func (h *DrugHandler) UpdateStatus(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	role, ok := middleware.GetRole(c)
	if !ok {
		return response.Unauthorized(c, "ROLE_UNRESOLVED", "Missing role in token")
	}

	drugID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid drug ID")
	}

	var req UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid status update input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	drug, err := h.custodyUC.AdvanceStatus(c.Request().Context(), &usecase.AdvanceStatusInput{
		DrugID:    drugID,
		NewStatus: entity.DrugStatus(req.Status),
		ActorID:   &userID,
		Role:      role,
		Location:  req.Location,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, drug, "Drug status updated successfully")
}

// Flag handles flagging a drug as suspicious, creating the accompanying
// alert in the same call.
func (h *DrugHandler) Flag(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	role, ok := middleware.GetRole(c)
	if !ok {
		return response.Unauthorized(c, "ROLE_UNRESOLVED", "Missing role in token")
	}

	drugID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.BadRequest(c, "INVALID_ID", "Invalid drug ID")
	}

	var req FlagDrugRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid flag input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	drug, err := h.custodyUC.FlagDrug(c.Request().Context(), &usecase.FlagDrugInput{
		DrugID:      drugID,
		ActorID:     &userID,
		Role:        role,
		Location:    req.Location,
		AlertType:   req.AlertType,
		Description: req.Description,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, drug, "Drug flagged successfully")
}
