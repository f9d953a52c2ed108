package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"energytracker/internal/service"
)

// TariffHandler handles tariff endpoints.
type TariffHandler struct {
	svc service.TariffService
}

// NewTariffHandler creates a new tariff handler.
func NewTariffHandler(svc service.TariffService) *TariffHandler {
	return &TariffHandler{svc: svc}
}

// CreateTariffRequest represents a new tariff.
type CreateTariffRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	PricePerKWh *decimal.Decimal `json:"price_per_kwh" validate:"required"`
	ValidFrom   string           `json:"valid_from" validate:"required"`
	ValidTo     *string          `json:"valid_to"`
	IsActive    bool             `json:"is_active"`
}

// UpdateTariffRequest is a partial tariff update. A null valid_to makes the
// tariff open-ended.
type UpdateTariffRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=100"`
	PricePerKWh *decimal.Decimal `json:"price_per_kwh"`
	ValidFrom   *string          `json:"valid_from"`
	ValidTo     Optional[string] `json:"valid_to"`
	IsActive    *bool            `json:"is_active"`
}

// List godoc
// @Summary List tariffs
// @Tags tariffs
// @Produce json
// @Security BearerAuth
// @Success 200 {array} TariffResponse
// @Router /tariffs [get]
func (h *TariffHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	out := make([]TariffResponse, 0, len(items))
	for i := range items {
		out = append(out, newTariffResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary Get tariff
// @Tags tariffs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tariff ID"
// @Success 200 {object} TariffResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tariffs/{id} [get]
func (h *TariffHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.svc.Get(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTariffResponse(t))
}

// Create godoc
// @Summary Create tariff
// @Description Creating an active tariff deactivates every other tariff of the user.
// @Tags tariffs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTariffRequest true "Tariff"
// @Success 201 {object} TariffResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /tariffs [post]
func (h *TariffHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req CreateTariffRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.svc.Create(c.Request().Context(), userID, service.CreateTariffInput{
		Name:        req.Name,
		PricePerKWh: *req.PricePerKWh,
		ValidFrom:   req.ValidFrom,
		ValidTo:     req.ValidTo,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newTariffResponse(t))
}

// Update godoc
// @Summary Update tariff
// @Tags tariffs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tariff ID"
// @Param request body UpdateTariffRequest true "Fields to change"
// @Success 200 {object} TariffResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tariffs/{id} [patch]
func (h *TariffHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateTariffRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	t, err := h.svc.Update(c.Request().Context(), userID, id, service.UpdateTariffInput{
		Name:         req.Name,
		PricePerKWh:  req.PricePerKWh,
		ValidFrom:    req.ValidFrom,
		ValidTo:      req.ValidTo.Ptr(),
		ClearValidTo: req.ValidTo.Cleared(),
		IsActive:     req.IsActive,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTariffResponse(t))
}

// Delete godoc
// @Summary Delete tariff
// @Tags tariffs
// @Security BearerAuth
// @Param id path int true "Tariff ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /tariffs/{id} [delete]
func (h *TariffHandler) Delete(c echo.Context) error {
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

// Activate godoc
// @Summary Activate tariff
// @Description Makes the tariff the user's only active tariff. Today must lie within its validity range.
// @Tags tariffs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Tariff ID"
// @Success 200 {object} TariffResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tariffs/{id}/activate [post]
func (h *TariffHandler) Activate(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	t, err := h.svc.Activate(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newTariffResponse(t))
}
