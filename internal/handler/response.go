package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"energytracker/internal/model"
	"energytracker/internal/period"
	"energytracker/internal/repository"
	"energytracker/internal/service"
)

// Decimal values are rendered as strings with their stored precision so
// clients never see float rounding.

func fixed(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}

func datePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := period.FormatDate(*t)
	return &s
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsBlocked bool      `json:"is_blocked"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Role: string(u.Role), IsBlocked: u.IsBlocked, CreatedAt: u.CreatedAt}
}

// ApplianceResponse is the public view of an appliance.
type ApplianceResponse struct {
	ID               uint      `json:"id"`
	Name             string    `json:"name"`
	EstimatedPowerKW *string   `json:"estimated_power_kw"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newApplianceResponse(a *model.Appliance) ApplianceResponse {
	resp := ApplianceResponse{ID: a.ID, Name: a.Name, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
	if a.EstimatedPowerKW.Valid {
		s := fixed(a.EstimatedPowerKW.Decimal, service.KWhPlaces)
		resp.EstimatedPowerKW = &s
	}
	return resp
}

// TariffResponse is the public view of a tariff.
type TariffResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	PricePerKWh string    `json:"price_per_kwh"`
	ValidFrom   string    `json:"valid_from"`
	ValidTo     *string   `json:"valid_to"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newTariffResponse(t *model.Tariff) TariffResponse {
	return TariffResponse{
		ID:          t.ID,
		Name:        t.Name,
		PricePerKWh: fixed(t.PricePerKWh, service.PricePlaces),
		ValidFrom:   period.FormatDate(t.ValidFrom),
		ValidTo:     datePtr(t.ValidTo),
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// LimitResponse is the public view of a limit.
type LimitResponse struct {
	ID                    uint      `json:"id"`
	LimitKWh              string    `json:"limit_kwh"`
	PeriodType            string    `json:"period_type"`
	PeriodStart           string    `json:"period_start"`
	PeriodEnd             string    `json:"period_end"`
	AlertEnabled          bool      `json:"alert_enabled"`
	AlertThresholdPercent int       `json:"alert_threshold_percent"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func newLimitResponse(l *model.Limit) LimitResponse {
	return LimitResponse{
		ID:                    l.ID,
		LimitKWh:              fixed(l.LimitKWh, service.KWhPlaces),
		PeriodType:            string(l.PeriodType),
		PeriodStart:           period.FormatDate(l.PeriodStart),
		PeriodEnd:             period.FormatDate(l.PeriodEnd),
		AlertEnabled:          l.AlertEnabled,
		AlertThresholdPercent: l.AlertThresholdPercent,
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}
}

// ConsumptionResponse is the public view of a consumption record.
type ConsumptionResponse struct {
	ID                 uint      `json:"id"`
	ApplianceID        *uint     `json:"appliance_id"`
	ConsumptionKWh     string    `json:"consumption_kwh"`
	AppliedPricePerKWh string    `json:"applied_price_per_kwh"`
	Cost               string    `json:"cost"`
	RecordDate         string    `json:"record_date"`
	Notes              string    `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func newConsumptionResponse(r *model.ConsumptionRecord) ConsumptionResponse {
	return ConsumptionResponse{
		ID:                 r.ID,
		ApplianceID:        r.ApplianceID,
		ConsumptionKWh:     fixed(r.ConsumptionKWh, service.KWhPlaces),
		AppliedPricePerKWh: fixed(r.AppliedPricePerKWh, service.PricePlaces),
		Cost:               fixed(r.Cost, service.CostPlaces),
		RecordDate:         period.FormatDate(r.RecordDate),
		Notes:              r.Notes,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

// ProgressResponse is a limit with its usage classification.
type ProgressResponse struct {
	Limit        LimitResponse `json:"limit"`
	UsedKWh      string        `json:"used_kwh"`
	RemainingKWh string        `json:"remaining_kwh"`
	PercentUsed  *string       `json:"percent_used"`
	Status       string        `json:"status"`
}

func newProgressResponse(p *service.LimitProgress) ProgressResponse {
	resp := ProgressResponse{
		Limit:        newLimitResponse(&p.Limit),
		UsedKWh:      fixed(p.UsedKWh, service.KWhPlaces),
		RemainingKWh: fixed(p.RemainingKWh, service.KWhPlaces),
		Status:       string(p.Status),
	}
	if p.PercentUsed != nil {
		s := fixed(*p.PercentUsed, service.PercentPlaces)
		resp.PercentUsed = &s
	}
	return resp
}

// SummaryResponse aggregates consumption over a range.
type SummaryResponse struct {
	DateFrom         string          `json:"date_from"`
	DateTo           string          `json:"date_to"`
	TotalKWh         string          `json:"total_kwh"`
	TotalCost        string          `json:"total_cost"`
	RecordCount      int64           `json:"record_count"`
	DaysWithData     int64           `json:"days_with_data"`
	AverageKWhPerDay string          `json:"average_kwh_per_day"`
	ActiveTariff     *TariffResponse `json:"active_tariff"`
}

func newSummaryResponse(s *service.Summary) SummaryResponse {
	resp := SummaryResponse{
		DateFrom:         period.FormatDate(s.Range.Start),
		DateTo:           period.FormatDate(s.Range.End),
		TotalKWh:         fixed(s.TotalKWh, service.KWhPlaces),
		TotalCost:        fixed(s.TotalCost, service.CostPlaces),
		RecordCount:      s.RecordCount,
		DaysWithData:     s.DaysWithData,
		AverageKWhPerDay: fixed(s.AverageKWhPerDay, service.KWhPlaces),
	}
	if s.ActiveTariff != nil {
		t := newTariffResponse(s.ActiveTariff)
		resp.ActiveTariff = &t
	}
	return resp
}

// DailyResponse is one day of the daily report.
type DailyResponse struct {
	Date        string `json:"date"`
	TotalKWh    string `json:"total_kwh"`
	TotalCost   string `json:"total_cost"`
	RecordCount int64  `json:"record_count"`
}

func newDailyResponses(rows []repository.DailyTotal) []DailyResponse {
	out := make([]DailyResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, DailyResponse{
			Date:        period.FormatDate(r.Day),
			TotalKWh:    fixed(r.TotalKWh, service.KWhPlaces),
			TotalCost:   fixed(r.TotalCost, service.CostPlaces),
			RecordCount: r.RecordCount,
		})
	}
	return out
}

// ApplianceShareResponse is one row of the per-appliance report.
type ApplianceShareResponse struct {
	ApplianceID   *uint  `json:"appliance_id"`
	ApplianceName string `json:"appliance_name"`
	TotalKWh      string `json:"total_kwh"`
	TotalCost     string `json:"total_cost"`
	RecordCount   int64  `json:"record_count"`
	SharePercent  string `json:"share_percent"`
}

func newApplianceShareResponses(rows []service.ApplianceShare) []ApplianceShareResponse {
	out := make([]ApplianceShareResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, ApplianceShareResponse{
			ApplianceID:   r.ApplianceID,
			ApplianceName: r.ApplianceName,
			TotalKWh:      fixed(r.TotalKWh, service.KWhPlaces),
			TotalCost:     fixed(r.TotalCost, service.CostPlaces),
			RecordCount:   r.RecordCount,
			SharePercent:  fixed(r.SharePercent, service.PercentPlaces),
		})
	}
	return out
}

// StatsResponse summarises the installation for administrators.
type StatsResponse struct {
	Users              int64  `json:"users"`
	Admins             int64  `json:"admins"`
	BlockedUsers       int64  `json:"blocked_users"`
	Appliances         int64  `json:"appliances"`
	Tariffs            int64  `json:"tariffs"`
	ActiveTariffs      int64  `json:"active_tariffs"`
	Limits             int64  `json:"limits"`
	ConsumptionRecords int64  `json:"consumption_records"`
	TotalKWh           string `json:"total_kwh"`
	TotalCost          string `json:"total_cost"`
}

func newStatsResponse(s *repository.SystemStats) StatsResponse {
	return StatsResponse{
		Users:              s.Users,
		Admins:             s.Admins,
		BlockedUsers:       s.BlockedUsers,
		Appliances:         s.Appliances,
		Tariffs:            s.Tariffs,
		ActiveTariffs:      s.ActiveTariffs,
		Limits:             s.Limits,
		ConsumptionRecords: s.ConsumptionRecords,
		TotalKWh:           fixed(s.TotalKWh, service.KWhPlaces),
		TotalCost:          fixed(s.TotalCost, service.CostPlaces),
	}
}

// AuditLogResponse is one audit record.
type AuditLogResponse struct {
	ID           uint            `json:"id"`
	AdminID      uint            `json:"admin_id"`
	Action       string          `json:"action"`
	TargetUserID *uint           `json:"target_user_id"`
	Details      json.RawMessage `json:"details"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AuditPageResponse is a page of audit records.
type AuditPageResponse struct {
	Items  []AuditLogResponse `json:"items"`
	Total  int64              `json:"total"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
}

func newAuditPageResponse(p *service.AuditPage) AuditPageResponse {
	items := make([]AuditLogResponse, 0, len(p.Entries))
	for _, e := range p.Entries {
		details := json.RawMessage(e.Details)
		if len(details) == 0 {
			details = json.RawMessage("null")
		}
		items = append(items, AuditLogResponse{
			ID:           e.ID,
			AdminID:      e.AdminID,
			Action:       e.Action,
			TargetUserID: e.TargetUserID,
			Details:      details,
			CreatedAt:    e.CreatedAt,
		})
	}
	return AuditPageResponse{Items: items, Total: p.Total, Limit: p.Limit, Offset: p.Offset}
}
