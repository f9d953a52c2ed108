package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "energytracker/internal/errors"
	"energytracker/internal/model"
	"energytracker/internal/period"
)

func TestLimitService_Create(t *testing.T) {
	t.Run("overlapping month limit is rejected", func(t *testing.T) {
		store := newMockStore()
		existing := model.Limit{ID: 7, UserID: 1, PeriodType: period.Month, PeriodStart: date("2025-12-15"), PeriodEnd: date("2026-01-10")}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.limits.On("FindOverlapping", mock.Anything, uint(1), period.Month, date("2025-12-01"), date("2025-12-31"), uint(0)).
			Return([]model.Limit{existing}, nil)

		_, err := NewLimitService(store).Create(context.Background(), 1, CreateLimitInput{
			LimitKWh:    dec("100"),
			PeriodType:  "month",
			PeriodStart: "2025-12-01",
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrLimitOverlap)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, uint(7), appErr.Details["existing_limit_id"])
		assert.Equal(t, 409, appErr.StatusCode())
		store.limits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	boundary := []struct {
		name     string
		existing model.Limit
		conflict bool
	}{
		{"existing ends on new start", model.Limit{ID: 5, PeriodType: period.Month, PeriodStart: date("2025-11-01"), PeriodEnd: date("2025-12-01")}, true},
		{"existing starts on new end", model.Limit{ID: 5, PeriodType: period.Month, PeriodStart: date("2025-12-31"), PeriodEnd: date("2026-01-30")}, true},
		{"existing ends the day before", model.Limit{ID: 5, PeriodType: period.Month, PeriodStart: date("2025-11-01"), PeriodEnd: date("2025-11-30")}, false},
		{"existing starts the day after", model.Limit{ID: 5, PeriodType: period.Month, PeriodStart: date("2026-01-01"), PeriodEnd: date("2026-01-31")}, false},
		{"other period type", model.Limit{ID: 5, PeriodType: period.Week, PeriodStart: date("2025-12-01"), PeriodEnd: date("2025-12-07")}, false},
	}
	for _, tt := range boundary {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
			store.limits.On("FindOverlapping", mock.Anything, uint(1), period.Month, date("2025-12-01"), date("2025-12-31"), uint(0)).
				Return([]model.Limit{tt.existing}, nil)
			store.limits.On("Create", mock.Anything, mock.AnythingOfType("*model.Limit")).Return(nil).Maybe()

			_, err := NewLimitService(store).Create(context.Background(), 1, CreateLimitInput{
				LimitKWh:    dec("100"),
				PeriodType:  "month",
				PeriodStart: "2025-12-01",
			})
			if tt.conflict {
				assert.ErrorIs(t, err, apperrors.ErrLimitOverlap)
				store.limits.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			store.limits.AssertCalled(t, "Create", mock.Anything, mock.AnythingOfType("*model.Limit"))
		})
	}

	t.Run("defaults and computed end", func(t *testing.T) {
		store := newMockStore()
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.limits.On("FindOverlapping", mock.Anything, uint(1), period.Month, mock.Anything, mock.Anything, uint(0)).Return([]model.Limit{}, nil)
		store.limits.On("Create", mock.Anything, mock.AnythingOfType("*model.Limit")).Return(nil)

		got, err := NewLimitService(store).Create(context.Background(), 1, CreateLimitInput{
			LimitKWh:    dec("150.12345"),
			PeriodType:  "month",
			PeriodStart: "2025-01-31",
		})
		require.NoError(t, err)
		assert.Equal(t, "2025-02-28", period.FormatDate(got.PeriodEnd))
		assert.Equal(t, "150.123", got.LimitKWh.StringFixed(3))
		assert.True(t, got.AlertEnabled)
		assert.Equal(t, model.DefaultAlertThresholdPercent, got.AlertThresholdPercent)
		assert.Equal(t, 1, store.txCount)
		store.assertExpectations(t)
	})

	t.Run("alert disabled is kept", func(t *testing.T) {
		store := newMockStore()
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.limits.On("FindOverlapping", mock.Anything, uint(1), period.Week, mock.Anything, mock.Anything, uint(0)).Return(nil, nil)
		store.limits.On("Create", mock.Anything, mock.AnythingOfType("*model.Limit")).Return(nil)

		got, err := NewLimitService(store).Create(context.Background(), 1, CreateLimitInput{
			LimitKWh:              dec("20"),
			PeriodType:            "week",
			PeriodStart:           "2025-03-03",
			AlertEnabled:          boolPtr(false),
			AlertThresholdPercent: intPtr(90),
		})
		require.NoError(t, err)
		assert.False(t, got.AlertEnabled)
		assert.Equal(t, 90, got.AlertThresholdPercent)
		assert.Equal(t, "2025-03-09", period.FormatDate(got.PeriodEnd))
	})

	invalid := []struct {
		name string
		in   CreateLimitInput
	}{
		{"zero limit", CreateLimitInput{LimitKWh: dec("0"), PeriodType: "month", PeriodStart: "2025-01-01"}},
		{"unknown period type", CreateLimitInput{LimitKWh: dec("1"), PeriodType: "day", PeriodStart: "2025-01-01"}},
		{"bad start", CreateLimitInput{LimitKWh: dec("1"), PeriodType: "month", PeriodStart: "01/01/2025"}},
		{"end mismatch", CreateLimitInput{LimitKWh: dec("1"), PeriodType: "month", PeriodStart: "2025-01-01", PeriodEnd: strPtr("2025-01-30")}},
		{"custom without end", CreateLimitInput{LimitKWh: dec("1"), PeriodType: "custom", PeriodStart: "2025-01-01"}},
		{"custom end before start", CreateLimitInput{LimitKWh: dec("1"), PeriodType: "custom", PeriodStart: "2025-01-10", PeriodEnd: strPtr("2025-01-09")}},
		{"threshold zero", CreateLimitInput{LimitKWh: dec("1"), PeriodType: "month", PeriodStart: "2025-01-01", AlertThresholdPercent: intPtr(0)}},
		{"threshold above 100", CreateLimitInput{LimitKWh: dec("1"), PeriodType: "month", PeriodStart: "2025-01-01", AlertThresholdPercent: intPtr(101)}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			_, err := NewLimitService(store).Create(context.Background(), 1, tt.in)
			require.Error(t, err)
			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperrors.KindValidation, appErr.Kind)
			assert.Equal(t, 0, store.txCount)
		})
	}
}

func TestLimitService_Update(t *testing.T) {
	t.Run("start change recomputes end and excludes itself", func(t *testing.T) {
		store := newMockStore()
		limit := &model.Limit{ID: 3, UserID: 1, LimitKWh: dec("100"), PeriodType: period.Month,
			PeriodStart: date("2025-01-01"), PeriodEnd: date("2025-01-31"), AlertEnabled: true, AlertThresholdPercent: 80}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.limits.On("FindByID", mock.Anything, uint(1), uint(3)).Return(limit, nil)
		store.limits.On("FindOverlapping", mock.Anything, uint(1), period.Month, date("2025-02-01"), date("2025-02-28"), uint(3)).Return([]model.Limit{}, nil)
		store.limits.On("Update", mock.Anything, limit).Return(nil)

		got, err := NewLimitService(store).Update(context.Background(), 1, 3, UpdateLimitInput{PeriodStart: strPtr("2025-02-01")})
		require.NoError(t, err)
		assert.Equal(t, "2025-02-28", period.FormatDate(got.PeriodEnd))
		store.assertExpectations(t)
	})

	t.Run("custom keeps stored end", func(t *testing.T) {
		store := newMockStore()
		limit := &model.Limit{ID: 3, UserID: 1, LimitKWh: dec("100"), PeriodType: period.Custom,
			PeriodStart: date("2025-01-01"), PeriodEnd: date("2025-03-01"), AlertThresholdPercent: 80}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.limits.On("FindByID", mock.Anything, uint(1), uint(3)).Return(limit, nil)
		store.limits.On("FindOverlapping", mock.Anything, uint(1), period.Custom, date("2025-02-01"), date("2025-03-01"), uint(3)).Return(nil, nil)
		store.limits.On("Update", mock.Anything, limit).Return(nil)

		got, err := NewLimitService(store).Update(context.Background(), 1, 3, UpdateLimitInput{PeriodStart: strPtr("2025-02-01")})
		require.NoError(t, err)
		assert.Equal(t, "2025-03-01", period.FormatDate(got.PeriodEnd))
	})

	t.Run("conflict leaves nothing written", func(t *testing.T) {
		store := newMockStore()
		limit := &model.Limit{ID: 3, UserID: 1, LimitKWh: dec("100"), PeriodType: period.Week,
			PeriodStart: date("2025-01-06"), PeriodEnd: date("2025-01-12"), AlertThresholdPercent: 80}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.limits.On("FindByID", mock.Anything, uint(1), uint(3)).Return(limit, nil)
		store.limits.On("FindOverlapping", mock.Anything, uint(1), period.Week, mock.Anything, mock.Anything, uint(3)).
			Return([]model.Limit{{ID: 4, UserID: 1, PeriodType: period.Week, PeriodStart: date("2025-01-13"), PeriodEnd: date("2025-01-19")}}, nil)

		_, err := NewLimitService(store).Update(context.Background(), 1, 3, UpdateLimitInput{PeriodStart: strPtr("2025-01-10")})
		assert.ErrorIs(t, err, apperrors.ErrLimitOverlap)
		store.limits.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing limit", func(t *testing.T) {
		store := newMockStore()
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.limits.On("FindByID", mock.Anything, uint(1), uint(3)).Return(nil, gorm.ErrRecordNotFound)

		_, err := NewLimitService(store).Update(context.Background(), 1, 3, UpdateLimitInput{})
		assert.ErrorIs(t, err, apperrors.ErrLimitNotFound)
	})
}

func TestLimitService_List(t *testing.T) {
	store := newMockStore()
	month := period.Month
	store.limits.On("ListByUser", mock.Anything, uint(1), &month).Return([]model.Limit{{ID: 1}}, nil)

	got, err := NewLimitService(store).List(context.Background(), 1, strPtr("month"))
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = NewLimitService(store).List(context.Background(), 1, strPtr("fortnight"))
	assert.Error(t, err)
}
