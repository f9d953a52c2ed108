package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"energytracker/internal/model"
	"energytracker/internal/period"
	"energytracker/internal/repository"
)

// ProgressStatus classifies a limit's usage.
type ProgressStatus string

const (
	StatusOK               ProgressStatus = "ok"
	StatusThresholdReached ProgressStatus = "threshold_reached"
	StatusLimitExceeded    ProgressStatus = "limit_exceeded"
)

// UnassignedAppliance labels consumption without an appliance.
const UnassignedAppliance = "Unassigned"

var hundred = decimal.NewFromInt(100)

// LimitProgress is a limit together with the consumption counted against it.
// PercentUsed is nil when the limit is not positive.
type LimitProgress struct {
	Limit        model.Limit
	UsedKWh      decimal.Decimal
	RemainingKWh decimal.Decimal
	PercentUsed  *decimal.Decimal
	Status       ProgressStatus
}

// Summary aggregates consumption over a range.
type Summary struct {
	Range            period.Range
	TotalKWh         decimal.Decimal
	TotalCost        decimal.Decimal
	RecordCount      int64
	DaysWithData     int64
	AverageKWhPerDay decimal.Decimal
	ActiveTariff     *model.Tariff
}

// ApplianceShare is one row of the per-appliance breakdown.
type ApplianceShare struct {
	ApplianceID   *uint
	ApplianceName string
	TotalKWh      decimal.Decimal
	TotalCost     decimal.Decimal
	RecordCount   int64
	SharePercent  decimal.Decimal
}

// ReportService runs read-only reports over a user's consumption.
type ReportService interface {
	// ResolveRange parses from/to, defaulting to the current calendar month.
	// A lone bound outside the current month stretches the other bound to
	// its own month.
	ResolveRange(from, to *string) (period.Range, error)
	Progress(ctx context.Context, userID, limitID uint) (*LimitProgress, error)
	Summary(ctx context.Context, userID uint, rng period.Range) (*Summary, error)
	Daily(ctx context.Context, userID uint, rng period.Range) ([]repository.DailyTotal, error)
	ByAppliance(ctx context.Context, userID uint, rng period.Range) ([]ApplianceShare, error)
	Limits(ctx context.Context, userID uint) ([]LimitProgress, error)
}

type reportService struct {
	store repository.Store
	now   Clock
}

// NewReportService creates a new report service.
func NewReportService(store repository.Store, now Clock) ReportService {
	return &reportService{store: store, now: now}
}

func (s *reportService) ResolveRange(from, to *string) (period.Range, error) {
	rng := period.MonthOf(period.Today(s.now))
	hasFrom := from != nil && *from != ""
	hasTo := to != nil && *to != ""

	if hasFrom {
		start, err := period.ParseDate("date_from", *from)
		if err != nil {
			return period.Range{}, err
		}
		rng.Start = start
		if own := period.MonthOf(start).End; !hasTo && own.After(rng.End) {
			rng.End = own
		}
	}
	if hasTo {
		end, err := period.ParseDate("date_to", *to)
		if err != nil {
			return period.Range{}, err
		}
		rng.End = end
		if own := period.MonthOf(end).Start; !hasFrom && own.Before(rng.Start) {
			rng.Start = own
		}
	}
	return period.NewRange(period.FormatDate(rng.Start), period.FormatDate(rng.End))
}

// ComputeProgress classifies used against limit. Exceeding the limit wins
// over the alert threshold; remaining never goes below zero.
//
// Status is decided on the exact ratio, not on the rounded PercentUsed, so
// it agrees with RemainingKWh: 99.996 of 100 shows "100.00" percent but is
// not exceeded while 0.004 kWh remain.
func ComputeProgress(limit model.Limit, used decimal.Decimal) LimitProgress {
	p := LimitProgress{
		Limit:        limit,
		UsedKWh:      used.Round(KWhPlaces),
		RemainingKWh: decimal.Max(decimal.Zero, limit.LimitKWh.Sub(used)).Round(KWhPlaces),
		Status:       StatusOK,
	}
	if !limit.LimitKWh.IsPositive() {
		return p
	}

	percent := used.Mul(hundred).Div(limit.LimitKWh).Round(PercentPlaces)
	p.PercentUsed = &percent

	switch {
	case used.GreaterThanOrEqual(limit.LimitKWh):
		p.Status = StatusLimitExceeded
	case limit.AlertEnabled &&
		used.Mul(hundred).GreaterThanOrEqual(limit.LimitKWh.Mul(decimal.NewFromInt(int64(limit.AlertThresholdPercent)))):
		p.Status = StatusThresholdReached
	}
	return p
}

func (s *reportService) Progress(ctx context.Context, userID, limitID uint) (*LimitProgress, error) {
	limit, err := findLimit(ctx, s.store, userID, limitID)
	if err != nil {
		return nil, err
	}
	p, err := s.progress(ctx, *limit)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *reportService) progress(ctx context.Context, limit model.Limit) (LimitProgress, error) {
	used, err := s.store.Consumption().SumKWh(ctx, limit.UserID, limit.PeriodStart, limit.PeriodEnd)
	if err != nil {
		return LimitProgress{}, fmt.Errorf("sum consumption: %w", err)
	}
	return ComputeProgress(limit, used), nil
}

func (s *reportService) Summary(ctx context.Context, userID uint, rng period.Range) (*Summary, error) {
	totals, err := s.store.Reports().Totals(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("consumption totals: %w", err)
	}

	summary := &Summary{
		Range:            rng,
		TotalKWh:         totals.TotalKWh.Round(KWhPlaces),
		TotalCost:        totals.TotalCost.Round(CostPlaces),
		RecordCount:      totals.RecordCount,
		DaysWithData:     totals.DaysWithData,
		AverageKWhPerDay: decimal.Zero.Round(KWhPlaces),
	}
	if totals.DaysWithData > 0 {
		summary.AverageKWhPerDay = totals.TotalKWh.Div(decimal.NewFromInt(totals.DaysWithData)).Round(KWhPlaces)
	}

	active, err := s.store.Tariffs().ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active tariffs: %w", err)
	}
	if len(active) > 0 {
		summary.ActiveTariff = &active[0]
	}
	return summary, nil
}

func (s *reportService) Daily(ctx context.Context, userID uint, rng period.Range) ([]repository.DailyTotal, error) {
	rows, err := s.store.Reports().Daily(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	return rows, nil
}

func (s *reportService) ByAppliance(ctx context.Context, userID uint, rng period.Range) ([]ApplianceShare, error) {
	rows, err := s.store.Reports().ByAppliance(ctx, userID, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("appliance totals: %w", err)
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.TotalKWh)
	}

	shares := make([]ApplianceShare, 0, len(rows))
	for _, r := range rows {
		share := ApplianceShare{
			ApplianceID:   r.ApplianceID,
			ApplianceName: UnassignedAppliance,
			TotalKWh:      r.TotalKWh.Round(KWhPlaces),
			TotalCost:     r.TotalCost.Round(CostPlaces),
			RecordCount:   r.RecordCount,
			SharePercent:  decimal.Zero.Round(PercentPlaces),
		}
		if r.ApplianceName != nil && r.ApplianceID != nil {
			share.ApplianceName = *r.ApplianceName
		}
		if total.IsPositive() {
			share.SharePercent = r.TotalKWh.Mul(hundred).Div(total).Round(PercentPlaces)
		}
		shares = append(shares, share)
	}
	return shares, nil
}

func (s *reportService) Limits(ctx context.Context, userID uint) ([]LimitProgress, error) {
	limits, err := s.store.Limits().ListByUser(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("list limits: %w", err)
	}
	out := make([]LimitProgress, 0, len(limits))
	for _, l := range limits {
		p, err := s.progress(ctx, l)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
