package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"energytracker/internal/export"
	"energytracker/internal/period"
	"energytracker/internal/service"
)

const (
	mimeCSV  = "text/csv; charset=utf-8"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// ReportHandler serves aggregated consumption reports and their exports.
type ReportHandler struct {
	svc service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(svc service.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// resolve reads the user and the date_from/date_to range.
func (h *ReportHandler) resolve(c echo.Context) (uint, period.Range, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return 0, period.Range{}, err
	}
	rng, err := h.svc.ResolveRange(queryString(c, "date_from"), queryString(c, "date_to"))
	if err != nil {
		return 0, period.Range{}, err
	}
	return userID, rng, nil
}

// Summary godoc
// @Summary Consumption summary
// @Description Totals over [date_from, date_to], defaulting to the current month.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c echo.Context) error {
	userID, rng, err := h.resolve(c)
	if err != nil {
		return err
	}
	s, err := h.svc.Summary(c.Request().Context(), userID, rng)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSummaryResponse(s))
}

// Daily godoc
// @Summary Daily consumption
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {array} DailyResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /reports/daily [get]
func (h *ReportHandler) Daily(c echo.Context) error {
	userID, rng, err := h.resolve(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.Daily(c.Request().Context(), userID, rng)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newDailyResponses(rows))
}

// ByAppliance godoc
// @Summary Consumption per appliance
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {array} ApplianceShareResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /reports/by-appliance [get]
func (h *ReportHandler) ByAppliance(c echo.Context) error {
	userID, rng, err := h.resolve(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.ByAppliance(c.Request().Context(), userID, rng)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newApplianceShareResponses(rows))
}

// Limits godoc
// @Summary Progress of every limit
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProgressResponse
// @Router /reports/limits [get]
func (h *ReportHandler) Limits(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.Limits(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	out := make([]ProgressResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newProgressResponse(&rows[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// SummaryCSV godoc
// @Summary Consumption summary as CSV
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Router /reports/summary/csv [get]
func (h *ReportHandler) SummaryCSV(c echo.Context) error {
	userID, rng, err := h.resolve(c)
	if err != nil {
		return err
	}
	s, err := h.svc.Summary(c.Request().Context(), userID, rng)
	if err != nil {
		return err
	}
	return writeCSV(c, export.SummaryTable(s), rng)
}

// DailyCSV godoc
// @Summary Daily consumption as CSV
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Router /reports/daily/csv [get]
func (h *ReportHandler) DailyCSV(c echo.Context) error {
	userID, rng, err := h.resolve(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.Daily(c.Request().Context(), userID, rng)
	if err != nil {
		return err
	}
	return writeCSV(c, export.DailyTable(rows), rng)
}

// ByApplianceCSV godoc
// @Summary Consumption per appliance as CSV
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Router /reports/by-appliance/csv [get]
func (h *ReportHandler) ByApplianceCSV(c echo.Context) error {
	userID, rng, err := h.resolve(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.ByAppliance(c.Request().Context(), userID, rng)
	if err != nil {
		return err
	}
	return writeCSV(c, export.ApplianceTable(rows), rng)
}

// LimitsCSV godoc
// @Summary Limit progress as CSV
// @Tags reports
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /reports/limits/csv [get]
func (h *ReportHandler) LimitsCSV(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	rows, err := h.svc.Limits(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, export.LimitsTable(rows)); err != nil {
		return err
	}
	return attachment(c, mimeCSV, "limits.csv", buf.Bytes())
}

// XLSX godoc
// @Summary Full report as an Excel workbook
// @Description One sheet each for summary, daily, by-appliance and limits.
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Router /reports/xlsx [get]
func (h *ReportHandler) XLSX(c echo.Context) error {
	report, rng, err := h.fullReport(c)
	if err != nil {
		return err
	}
	data, err := export.BuildXLSX(report)
	if err != nil {
		return err
	}
	return attachment(c, mimeXLSX, fileName("report", rng, "xlsx"), data)
}

// PDF godoc
// @Summary Full report as PDF
// @Tags reports
// @Produce application/pdf
// @Security BearerAuth
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD"
// @Success 200 {file} file
// @Router /reports/pdf [get]
func (h *ReportHandler) PDF(c echo.Context) error {
	report, rng, err := h.fullReport(c)
	if err != nil {
		return err
	}
	data, err := export.BuildPDF(report)
	if err != nil {
		return err
	}
	return attachment(c, mimePDF, fileName("report", rng, "pdf"), data)
}

func (h *ReportHandler) fullReport(c echo.Context) (export.Report, period.Range, error) {
	userID, rng, err := h.resolve(c)
	if err != nil {
		return export.Report{}, rng, err
	}
	ctx := c.Request().Context()

	var r export.Report
	if r.Summary, err = h.svc.Summary(ctx, userID, rng); err != nil {
		return r, rng, err
	}
	if r.Daily, err = h.svc.Daily(ctx, userID, rng); err != nil {
		return r, rng, err
	}
	if r.ByAppliance, err = h.svc.ByAppliance(ctx, userID, rng); err != nil {
		return r, rng, err
	}
	if r.Limits, err = h.svc.Limits(ctx, userID); err != nil {
		return r, rng, err
	}
	return r, rng, nil
}

func writeCSV(c echo.Context, t export.Table, rng period.Range) error {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, t); err != nil {
		return err
	}
	return attachment(c, mimeCSV, fileName(t.Name, rng, "csv"), buf.Bytes())
}

func fileName(name string, rng period.Range, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", name, period.FormatDate(rng.Start), period.FormatDate(rng.End), ext)
}

func attachment(c echo.Context, contentType, name string, data []byte) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, contentType, data)
}
