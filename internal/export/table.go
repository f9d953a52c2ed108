// Package export renders report data as CSV, XLSX and PDF documents.
package export

import (
	"strconv"

	"github.com/shopspring/decimal"

	"energytracker/internal/period"
	"energytracker/internal/repository"
	"energytracker/internal/service"
)

// Amount is a decimal cell rendered with a fixed number of places.
type Amount struct {
	Value  decimal.Decimal
	Places int32
}

// Table is a named grid of cells. A cell is a string, an int64, an Amount
// or nil for an empty cell.
type Table struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// Report bundles everything a full export contains.
type Report struct {
	Summary     *service.Summary
	Daily       []repository.DailyTotal
	ByAppliance []service.ApplianceShare
	Limits      []service.LimitProgress
}

func kwh(d decimal.Decimal) Amount     { return Amount{Value: d, Places: service.KWhPlaces} }
func money(d decimal.Decimal) Amount   { return Amount{Value: d, Places: service.CostPlaces} }
func percent(d decimal.Decimal) Amount { return Amount{Value: d, Places: service.PercentPlaces} }

// SummaryTable lays the summary out as label/value pairs.
func SummaryTable(s *service.Summary) Table {
	t := Table{Name: "summary", Header: []string{"metric", "value"}}
	t.Rows = [][]interface{}{
		{"date_from", period.FormatDate(s.Range.Start)},
		{"date_to", period.FormatDate(s.Range.End)},
		{"total_kwh", kwh(s.TotalKWh)},
		{"total_cost", money(s.TotalCost)},
		{"record_count", s.RecordCount},
		{"days_with_data", s.DaysWithData},
		{"average_kwh_per_day", kwh(s.AverageKWhPerDay)},
	}
	if s.ActiveTariff != nil {
		t.Rows = append(t.Rows,
			[]interface{}{"active_tariff", s.ActiveTariff.Name},
			[]interface{}{"active_tariff_price_per_kwh", Amount{Value: s.ActiveTariff.PricePerKWh, Places: service.PricePlaces}},
		)
	}
	return t
}

// DailyTable has one row per day with data.
func DailyTable(rows []repository.DailyTotal) Table {
	t := Table{Name: "daily", Header: []string{"date", "total_kwh", "total_cost", "record_count"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []interface{}{period.FormatDate(r.Day), kwh(r.TotalKWh), money(r.TotalCost), r.RecordCount})
	}
	return t
}

// ApplianceTable has one row per appliance, unassigned usage included.
func ApplianceTable(rows []service.ApplianceShare) Table {
	t := Table{Name: "by-appliance", Header: []string{"appliance_id", "appliance", "total_kwh", "total_cost", "record_count", "share_percent"}}
	for _, r := range rows {
		var id interface{}
		if r.ApplianceID != nil {
			id = int64(*r.ApplianceID)
		}
		t.Rows = append(t.Rows, []interface{}{id, r.ApplianceName, kwh(r.TotalKWh), money(r.TotalCost), r.RecordCount, percent(r.SharePercent)})
	}
	return t
}

// LimitsTable has one row per limit with its progress.
func LimitsTable(rows []service.LimitProgress) Table {
	t := Table{Name: "limits", Header: []string{
		"limit_id", "period_type", "period_start", "period_end", "limit_kwh",
		"used_kwh", "remaining_kwh", "percent_used", "status",
	}}
	for _, p := range rows {
		var pct interface{}
		if p.PercentUsed != nil {
			pct = percent(*p.PercentUsed)
		}
		t.Rows = append(t.Rows, []interface{}{
			int64(p.Limit.ID),
			string(p.Limit.PeriodType),
			period.FormatDate(p.Limit.PeriodStart),
			period.FormatDate(p.Limit.PeriodEnd),
			kwh(p.Limit.LimitKWh),
			kwh(p.UsedKWh),
			kwh(p.RemainingKWh),
			pct,
			string(p.Status),
		})
	}
	return t
}

func (r Report) tables() []Table {
	var tables []Table
	if r.Summary != nil {
		tables = append(tables, SummaryTable(r.Summary))
	}
	return append(tables, DailyTable(r.Daily), ApplianceTable(r.ByAppliance), LimitsTable(r.Limits))
}

func plainText(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case int64:
		return strconv.FormatInt(c, 10)
	case Amount:
		return c.Value.StringFixed(c.Places)
	}
	return ""
}
