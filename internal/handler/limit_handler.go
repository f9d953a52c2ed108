package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"energytracker/internal/service"
)

// LimitHandler handles consumption limit endpoints.
type LimitHandler struct {
	svc     service.LimitService
	reports service.ReportService
}

// NewLimitHandler creates a new limit handler.
func NewLimitHandler(svc service.LimitService, reports service.ReportService) *LimitHandler {
	return &LimitHandler{svc: svc, reports: reports}
}

// CreateLimitRequest represents a new limit. period_end is required for
// custom periods and computed for the others.
type CreateLimitRequest struct {
	LimitKWh              *decimal.Decimal `json:"limit_kwh" validate:"required"`
	PeriodType            string           `json:"period_type" validate:"required,oneof=week month year custom"`
	PeriodStart           string           `json:"period_start" validate:"required"`
	PeriodEnd             *string          `json:"period_end"`
	AlertEnabled          *bool            `json:"alert_enabled"`
	AlertThresholdPercent *int             `json:"alert_threshold_percent" validate:"omitempty,gte=1,lte=100"`
}

// UpdateLimitRequest is a partial limit update.
type UpdateLimitRequest struct {
	LimitKWh              *decimal.Decimal `json:"limit_kwh"`
	PeriodType            *string          `json:"period_type" validate:"omitempty,oneof=week month year custom"`
	PeriodStart           *string          `json:"period_start"`
	PeriodEnd             *string          `json:"period_end"`
	AlertEnabled          *bool            `json:"alert_enabled"`
	AlertThresholdPercent *int             `json:"alert_threshold_percent" validate:"omitempty,gte=1,lte=100"`
}

// List godoc
// @Summary List limits
// @Tags limits
// @Produce json
// @Security BearerAuth
// @Param period_type query string false "week, month, year or custom"
// @Success 200 {array} LimitResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /limits [get]
func (h *LimitHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), userID, queryString(c, "period_type"))
	if err != nil {
		return err
	}
	out := make([]LimitResponse, 0, len(items))
	for i := range items {
		out = append(out, newLimitResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary Get limit
// @Tags limits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Limit ID"
// @Success 200 {object} LimitResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /limits/{id} [get]
func (h *LimitHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	l, err := h.svc.Get(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newLimitResponse(l))
}

// Create godoc
// @Summary Create limit
// @Tags limits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateLimitRequest true "Limit"
// @Success 201 {object} LimitResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse "overlaps existing_limit_id"
// @Router /limits [post]
func (h *LimitHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	var req CreateLimitRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	l, err := h.svc.Create(c.Request().Context(), userID, service.CreateLimitInput{
		LimitKWh:              *req.LimitKWh,
		PeriodType:            req.PeriodType,
		PeriodStart:           req.PeriodStart,
		PeriodEnd:             req.PeriodEnd,
		AlertEnabled:          req.AlertEnabled,
		AlertThresholdPercent: req.AlertThresholdPercent,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newLimitResponse(l))
}

// Update godoc
// @Summary Update limit
// @Tags limits
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Limit ID"
// @Param request body UpdateLimitRequest true "Fields to change"
// @Success 200 {object} LimitResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /limits/{id} [patch]
func (h *LimitHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateLimitRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	l, err := h.svc.Update(c.Request().Context(), userID, id, service.UpdateLimitInput{
		LimitKWh:              req.LimitKWh,
		PeriodType:            req.PeriodType,
		PeriodStart:           req.PeriodStart,
		PeriodEnd:             req.PeriodEnd,
		AlertEnabled:          req.AlertEnabled,
		AlertThresholdPercent: req.AlertThresholdPercent,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newLimitResponse(l))
}

// Delete godoc
// @Summary Delete limit
// @Tags limits
// @Security BearerAuth
// @Param id path int true "Limit ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /limits/{id} [delete]
func (h *LimitHandler) Delete(c echo.Context) error {
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

// Progress godoc
// @Summary Limit progress
// @Description Consumption used inside the limit period and its status (ok, threshold_reached, limit_exceeded).
// @Tags limits
// @Produce json
// @Security BearerAuth
// @Param id path int true "Limit ID"
// @Success 200 {object} ProgressResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /limits/{id}/progress [get]
func (h *LimitHandler) Progress(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.reports.Progress(c.Request().Context(), userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newProgressResponse(p))
}
