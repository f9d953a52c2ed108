package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"energytracker/internal/service"
)

// Default and maximum page size for consumption listings.
const (
	defaultConsumptionPageSize = 100
	maxConsumptionPageSize     = 1000
)

// ConsumptionHandler handles consumption record endpoints.
type ConsumptionHandler struct {
	svc service.ConsumptionService
}

// NewConsumptionHandler creates a new consumption handler.
func NewConsumptionHandler(svc service.ConsumptionService) *ConsumptionHandler {
	return &ConsumptionHandler{svc: svc}
}

// CreateConsumptionRequest represents a new consumption record. Exactly one
// of consumption_kwh and usage_hours must be given.
type CreateConsumptionRequest struct {
	ApplianceID    *uint            `json:"appliance_id" validate:"omitempty,gte=1"`
	ConsumptionKWh *decimal.Decimal `json:"consumption_kwh"`
	UsageHours     *decimal.Decimal `json:"usage_hours"`
	RecordDate     *string          `json:"record_date"`
	Notes          *string          `json:"notes" validate:"omitempty,max=500"`
}

// UpdateConsumptionRequest is a partial update. A null appliance_id
// unassigns the record.
type UpdateConsumptionRequest struct {
	ApplianceID    Optional[uint]   `json:"appliance_id"`
	ConsumptionKWh *decimal.Decimal `json:"consumption_kwh"`
	UsageHours     *decimal.Decimal `json:"usage_hours"`
	RecordDate     *string          `json:"record_date"`
	Notes          *string          `json:"notes" validate:"omitempty,max=500"`
}

// List godoc
// @Summary List consumption records
// @Tags consumption
// @Produce json
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Param appliance_id query int false "Appliance ID"
// @Param limit query int false "Page size (default 100, max 1000)"
// @Param offset query int false "Offset"
// @Success 200 {array} ConsumptionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /consumption [get]
func (h *ConsumptionHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	filter := service.ConsumptionListFilter{
		DateFrom: queryString(c, "date_from"),
		DateTo:   queryString(c, "date_to"),
	}
	if filter.ApplianceID, err = queryID(c, "appliance_id"); err != nil {
		return err
	}
	if filter.Limit, err = queryInt(c, "limit", defaultConsumptionPageSize); err != nil {
		return err
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = defaultConsumptionPageSize
	case filter.Limit > maxConsumptionPageSize:
		filter.Limit = maxConsumptionPageSize
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		return err
	}

	items, err := h.svc.List(c.Request().Context(), userID, filter)
	if err != nil {
		return err
	}
	out := make([]ConsumptionResponse, 0, len(items))
	for i := range items {
		out = append(out, newConsumptionResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary Get consumption record
// @Tags consumption
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 200 {object} ConsumptionResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /consumption/{id} [get]
func (h *ConsumptionHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	r, err := h.svc.Get(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newConsumptionResponse(r))
}

// Create godoc
// @Summary Record consumption
// @Description Prices the record with the active tariff. usage_hours is converted with the appliance's estimated power.
// @Tags consumption
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateConsumptionRequest true "Consumption"
// @Success 201 {object} ConsumptionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /consumption [post]
func (h *ConsumptionHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req CreateConsumptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.svc.Create(c.Request().Context(), userID, service.CreateConsumptionInput{
		ApplianceID:    req.ApplianceID,
		ConsumptionKWh: req.ConsumptionKWh,
		UsageHours:     req.UsageHours,
		RecordDate:     req.RecordDate,
		Notes:          req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newConsumptionResponse(r))
}

// Update godoc
// @Summary Update consumption record
// @Description Changing consumption_kwh or usage_hours re-prices the record with the current active tariff.
// @Tags consumption
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Param request body UpdateConsumptionRequest true "Fields to change"
// @Success 200 {object} ConsumptionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /consumption/{id} [patch]
func (h *ConsumptionHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateConsumptionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	r, err := h.svc.Update(c.Request().Context(), userID, id, service.UpdateConsumptionInput{
		ApplianceID:    req.ApplianceID.Ptr(),
		ClearAppliance: req.ApplianceID.Cleared(),
		ConsumptionKWh: req.ConsumptionKWh,
		UsageHours:     req.UsageHours,
		RecordDate:     req.RecordDate,
		Notes:          req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newConsumptionResponse(r))
}

// Delete godoc
// @Summary Delete consumption record
// @Tags consumption
// @Security BearerAuth
// @Param id path int true "Record ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /consumption/{id} [delete]
func (h *ConsumptionHandler) Delete(c echo.Context) error {
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
