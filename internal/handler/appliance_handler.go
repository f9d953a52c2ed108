package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"energytracker/internal/service"
)

// ApplianceHandler handles appliance endpoints.
type ApplianceHandler struct {
	svc service.ApplianceService
}

// NewApplianceHandler creates a new appliance handler.
func NewApplianceHandler(svc service.ApplianceService) *ApplianceHandler {
	return &ApplianceHandler{svc: svc}
}

// CreateApplianceRequest represents a new appliance.
type CreateApplianceRequest struct {
	Name             string           `json:"name" validate:"required,max=100"`
	EstimatedPowerKW *decimal.Decimal `json:"estimated_power_kw"`
}

// UpdateApplianceRequest is a partial appliance update. A null
// estimated_power_kw removes the estimate.
type UpdateApplianceRequest struct {
	Name             *string                   `json:"name" validate:"omitempty,max=100"`
	EstimatedPowerKW Optional[decimal.Decimal] `json:"estimated_power_kw"`
}

// List godoc
// @Summary List appliances
// @Tags appliances
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ApplianceResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /appliances [get]
func (h *ApplianceHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	out := make([]ApplianceResponse, 0, len(items))
	for i := range items {
		out = append(out, newApplianceResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary Get appliance
// @Tags appliances
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appliance ID"
// @Success 200 {object} ApplianceResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /appliances/{id} [get]
func (h *ApplianceHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	a, err := h.svc.Get(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newApplianceResponse(a))
}

// Create godoc
// @Summary Create appliance
// @Tags appliances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateApplianceRequest true "Appliance"
// @Success 201 {object} ApplianceResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /appliances [post]
func (h *ApplianceHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req CreateApplianceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.svc.Create(c.Request().Context(), userID, service.ApplianceInput{
		Name:             &req.Name,
		EstimatedPowerKW: req.EstimatedPowerKW,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newApplianceResponse(a))
}

// Update godoc
// @Summary Update appliance
// @Tags appliances
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Appliance ID"
// @Param request body UpdateApplianceRequest true "Fields to change"
// @Success 200 {object} ApplianceResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /appliances/{id} [patch]
func (h *ApplianceHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateApplianceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	a, err := h.svc.Update(c.Request().Context(), userID, id, service.ApplianceInput{
		Name:             req.Name,
		EstimatedPowerKW: req.EstimatedPowerKW.Ptr(),
		ClearPower:       req.EstimatedPowerKW.Cleared(),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newApplianceResponse(a))
}

// Delete godoc
// @Summary Delete appliance
// @Description Consumption records of the appliance are kept and become unassigned.
// @Tags appliances
// @Security BearerAuth
// @Param id path int true "Appliance ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /appliances/{id} [delete]
func (h *ApplianceHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), userID, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
