package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"energytracker/internal/model"
	"energytracker/internal/period"
	"energytracker/internal/repository"
)

func TestComputeProgress(t *testing.T) {
	limit := model.Limit{LimitKWh: dec("100"), AlertEnabled: true, AlertThresholdPercent: 80}

	tests := []struct {
		name      string
		limit     model.Limit
		used      string
		percent   string
		remaining string
		status    ProgressStatus
	}{
		{"below threshold", limit, "50", "50.00", "50.000", StatusOK},
		{"threshold reached", limit, "85", "85.00", "15.000", StatusThresholdReached},
		{"exactly at threshold", limit, "80", "80.00", "20.000", StatusThresholdReached},
		{"exactly at limit", limit, "100", "100.00", "0.000", StatusLimitExceeded},
		{"over the limit", limit, "130.5", "130.50", "0.000", StatusLimitExceeded},
		{"rounds to 100 but not exceeded", limit, "99.996", "100.00", "0.004", StatusThresholdReached},
		{"alerts disabled", model.Limit{LimitKWh: dec("100"), AlertThresholdPercent: 80}, "95", "95.00", "5.000", StatusOK},
		{"exceeded even with alerts disabled", model.Limit{LimitKWh: dec("100"), AlertThresholdPercent: 80}, "100", "100.00", "0.000", StatusLimitExceeded},
		{"fractional percent", model.Limit{LimitKWh: dec("3"), AlertEnabled: true, AlertThresholdPercent: 100}, "1", "33.33", "2.000", StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeProgress(tt.limit, dec(tt.used))
			require.NotNil(t, p.PercentUsed)
			assert.Equal(t, tt.percent, p.PercentUsed.StringFixed(PercentPlaces))
			assert.Equal(t, tt.remaining, p.RemainingKWh.StringFixed(KWhPlaces))
			assert.Equal(t, tt.status, p.Status)
		})
	}

	t.Run("non-positive limit has no percent", func(t *testing.T) {
		p := ComputeProgress(model.Limit{LimitKWh: decimal.Zero, AlertEnabled: true, AlertThresholdPercent: 80}, dec("5"))
		assert.Nil(t, p.PercentUsed)
		assert.Equal(t, StatusOK, p.Status)
		assert.True(t, p.RemainingKWh.IsZero())
	})
}

func TestReportService_Progress(t *testing.T) {
	store := newMockStore()
	limit := &model.Limit{ID: 3, UserID: 1, LimitKWh: dec("100"), PeriodType: period.Month,
		PeriodStart: date("2025-06-01"), PeriodEnd: date("2025-06-30"), AlertEnabled: true, AlertThresholdPercent: 80}
	store.limits.On("FindByID", mock.Anything, uint(1), uint(3)).Return(limit, nil)
	store.consumption.On("SumKWh", mock.Anything, uint(1), date("2025-06-01"), date("2025-06-30")).Return(dec("85"), nil)

	p, err := NewReportService(store, fixedClock("2025-06-15")).Progress(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, StatusThresholdReached, p.Status)
	assert.Equal(t, "85.00", p.PercentUsed.StringFixed(2))
	store.assertExpectations(t)
}

func TestReportService_ResolveRange(t *testing.T) {
	svc := NewReportService(newMockStore(), fixedClock("2024-02-14"))

	rng, err := svc.ResolveRange(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", period.FormatDate(rng.Start))
	assert.Equal(t, "2024-02-29", period.FormatDate(rng.End))

	rng, err = svc.ResolveRange(strPtr("2024-01-15"), nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", period.FormatDate(rng.Start))
	assert.Equal(t, "2024-02-29", period.FormatDate(rng.End))

	rng, err = svc.ResolveRange(strPtr("2024-03-10"), nil)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", period.FormatDate(rng.Start))
	assert.Equal(t, "2024-03-31", period.FormatDate(rng.End))

	rng, err = svc.ResolveRange(nil, strPtr("2024-02-20"))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", period.FormatDate(rng.Start))
	assert.Equal(t, "2024-02-20", period.FormatDate(rng.End))

	rng, err = svc.ResolveRange(nil, strPtr("2023-12-05"))
	require.NoError(t, err)
	assert.Equal(t, "2023-12-01", period.FormatDate(rng.Start))
	assert.Equal(t, "2023-12-05", period.FormatDate(rng.End))

	_, err = svc.ResolveRange(strPtr("2024-03-01"), strPtr("2024-02-01"))
	assert.Error(t, err)
	_, err = svc.ResolveRange(strPtr("yesterday"), nil)
	assert.Error(t, err)
}

func TestReportService_Summary(t *testing.T) {
	store := newMockStore()
	rng := period.Range{Start: date("2025-06-01"), End: date("2025-06-30")}
	store.reports.On("Totals", mock.Anything, uint(1), rng.Start, rng.End).Return(&repository.Totals{
		TotalKWh: dec("10"), TotalCost: dec("43.2"), RecordCount: 4, DaysWithData: 3,
	}, nil)
	store.tariffs.On("ListActive", mock.Anything, uint(1)).Return(activeTariff("4.32"), nil)

	s, err := NewReportService(store, fixedClock("2025-06-15")).Summary(context.Background(), 1, rng)
	require.NoError(t, err)
	assert.Equal(t, "3.333", s.AverageKWhPerDay.StringFixed(KWhPlaces))
	assert.Equal(t, int64(4), s.RecordCount)
	require.NotNil(t, s.ActiveTariff)
	assert.Equal(t, uint(11), s.ActiveTariff.ID)
}

func TestReportService_ByAppliance(t *testing.T) {
	store := newMockStore()
	rng := period.Range{Start: date("2025-06-01"), End: date("2025-06-30")}
	name := "Fridge"
	store.reports.On("ByAppliance", mock.Anything, uint(1), rng.Start, rng.End).Return([]repository.ApplianceTotal{
		{ApplianceID: uintPtr(2), ApplianceName: &name, TotalKWh: dec("3"), TotalCost: dec("3"), RecordCount: 2},
		{TotalKWh: dec("1"), TotalCost: dec("1"), RecordCount: 1},
	}, nil)

	rows, err := NewReportService(store, fixedClock("2025-06-15")).ByAppliance(context.Background(), 1, rng)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Fridge", rows[0].ApplianceName)
	assert.Equal(t, "75.00", rows[0].SharePercent.StringFixed(2))
	assert.Equal(t, UnassignedAppliance, rows[1].ApplianceName)
	assert.Nil(t, rows[1].ApplianceID)
	assert.Equal(t, "25.00", rows[1].SharePercent.StringFixed(2))
}

func TestReportService_Limits(t *testing.T) {
	store := newMockStore()
	limits := []model.Limit{
		{ID: 1, UserID: 1, LimitKWh: dec("10"), PeriodStart: date("2025-06-01"), PeriodEnd: date("2025-06-07"), AlertEnabled: true, AlertThresholdPercent: 80},
		{ID: 2, UserID: 1, LimitKWh: dec("10"), PeriodStart: date("2025-06-08"), PeriodEnd: date("2025-06-14"), AlertEnabled: true, AlertThresholdPercent: 80},
	}
	store.limits.On("ListByUser", mock.Anything, uint(1), (*period.Type)(nil)).Return(limits, nil)
	store.consumption.On("SumKWh", mock.Anything, uint(1), date("2025-06-01"), date("2025-06-07")).Return(dec("12"), nil)
	store.consumption.On("SumKWh", mock.Anything, uint(1), date("2025-06-08"), date("2025-06-14")).Return(dec("2"), nil)

	got, err := NewReportService(store, fixedClock("2025-06-15")).Limits(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, StatusLimitExceeded, got[0].Status)
	assert.Equal(t, StatusOK, got[1].Status)
}
