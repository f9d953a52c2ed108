package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "energytracker/internal/errors"
	"energytracker/internal/model"
)

func newTariffService(store *mockStore, today string) TariffService {
	return NewTariffService(store, fixedClock(today), zap.NewNop())
}

func TestTariffService_Activate(t *testing.T) {
	validTo := date("2025-12-31")

	t.Run("deactivates others and activates target", func(t *testing.T) {
		store := newMockStore()
		tariff := &model.Tariff{ID: 5, UserID: 1, PricePerKWh: dec("4.32"), ValidFrom: date("2025-01-01"), ValidTo: &validTo}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.tariffs.On("FindByID", mock.Anything, uint(1), uint(5)).Return(tariff, nil)
		store.tariffs.On("DeactivateOthers", mock.Anything, uint(1), uint(5)).Return(int64(1), nil)
		store.tariffs.On("Update", mock.Anything, mock.MatchedBy(func(t *model.Tariff) bool { return t.ID == 5 && t.IsActive })).Return(nil)

		got, err := newTariffService(store, "2025-06-15").Activate(context.Background(), 1, 5)
		require.NoError(t, err)
		assert.True(t, got.IsActive)
		assert.Equal(t, 1, store.txCount)
		store.assertExpectations(t)
	})

	t.Run("already active is a no-op", func(t *testing.T) {
		store := newMockStore()
		tariff := &model.Tariff{ID: 5, UserID: 1, ValidFrom: date("2020-01-01"), IsActive: true}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.tariffs.On("FindByID", mock.Anything, uint(1), uint(5)).Return(tariff, nil)

		got, err := newTariffService(store, "2025-06-15").Activate(context.Background(), 1, 5)
		require.NoError(t, err)
		assert.Same(t, tariff, got)
		store.tariffs.AssertNotCalled(t, "DeactivateOthers", mock.Anything, mock.Anything, mock.Anything)
		store.tariffs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("today outside validity", func(t *testing.T) {
		store := newMockStore()
		tariff := &model.Tariff{ID: 5, UserID: 1, ValidFrom: date("2025-01-01"), ValidTo: &validTo}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.tariffs.On("FindByID", mock.Anything, uint(1), uint(5)).Return(tariff, nil)

		_, err := newTariffService(store, "2026-01-01").Activate(context.Background(), 1, 5)
		assert.ErrorIs(t, err, apperrors.ErrTariffNotActiveNow)
		store.tariffs.AssertNotCalled(t, "DeactivateOthers", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("not owned", func(t *testing.T) {
		store := newMockStore()
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.tariffs.On("FindByID", mock.Anything, uint(1), uint(9)).Return(nil, gorm.ErrRecordNotFound)

		_, err := newTariffService(store, "2025-06-15").Activate(context.Background(), 1, 9)
		assert.ErrorIs(t, err, apperrors.ErrTariffNotFound)
	})
}

func TestTariffService_Create(t *testing.T) {
	t.Run("inverted range", func(t *testing.T) {
		store := newMockStore()
		_, err := newTariffService(store, "2025-06-15").Create(context.Background(), 1, CreateTariffInput{
			Name:        "Night",
			PricePerKWh: dec("1.5"),
			ValidFrom:   "2025-06-01",
			ValidTo:     strPtr("2025-05-01"),
		})
		assert.ErrorIs(t, err, apperrors.ErrTariffRange)
		assert.Equal(t, 0, store.txCount)
	})

	t.Run("non-positive price", func(t *testing.T) {
		_, err := newTariffService(newMockStore(), "2025-06-15").Create(context.Background(), 1, CreateTariffInput{
			Name:        "Free",
			PricePerKWh: dec("0"),
			ValidFrom:   "2025-06-01",
		})
		require.Error(t, err)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "price_per_kwh", appErr.Details["field"])
	})

	t.Run("inactive tariff skips activation", func(t *testing.T) {
		store := newMockStore()
		store.tariffs.On("Create", mock.Anything, mock.AnythingOfType("*model.Tariff")).Return(nil)

		got, err := newTariffService(store, "2025-06-15").Create(context.Background(), 1, CreateTariffInput{
			Name:        " Day ",
			PricePerKWh: dec("4.321987"),
			ValidFrom:   "2025-06-01",
		})
		require.NoError(t, err)
		assert.Equal(t, "Day", got.Name)
		assert.Equal(t, "4.3220", got.PricePerKWh.StringFixed(4))
		assert.Equal(t, 0, store.txCount)
		store.assertExpectations(t)
	})

	t.Run("active tariff deactivates all others", func(t *testing.T) {
		store := newMockStore()
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.tariffs.On("DeactivateOthers", mock.Anything, uint(1), uint(0)).Return(int64(2), nil)
		store.tariffs.On("Create", mock.Anything, mock.AnythingOfType("*model.Tariff")).Return(nil)

		got, err := newTariffService(store, "2025-06-15").Create(context.Background(), 1, CreateTariffInput{
			Name:        "Day",
			PricePerKWh: dec("4.32"),
			ValidFrom:   "2025-06-01",
			IsActive:    true,
		})
		require.NoError(t, err)
		assert.True(t, got.IsActive)
		assert.Equal(t, 1, store.txCount)
		store.assertExpectations(t)
	})

	t.Run("active tariff starting tomorrow", func(t *testing.T) {
		store := newMockStore()
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)

		_, err := newTariffService(store, "2025-06-15").Create(context.Background(), 1, CreateTariffInput{
			Name:        "Day",
			PricePerKWh: dec("4.32"),
			ValidFrom:   "2025-06-16",
			IsActive:    true,
		})
		assert.ErrorIs(t, err, apperrors.ErrTariffNotActiveNow)
		store.tariffs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTariffService_Update(t *testing.T) {
	t.Run("clearing valid_to and activating", func(t *testing.T) {
		store := newMockStore()
		validTo := date("2025-01-31")
		tariff := &model.Tariff{ID: 3, UserID: 1, Name: "Old", PricePerKWh: dec("2"), ValidFrom: date("2025-01-01"), ValidTo: &validTo}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.tariffs.On("FindByID", mock.Anything, uint(1), uint(3)).Return(tariff, nil)
		store.tariffs.On("DeactivateOthers", mock.Anything, uint(1), uint(3)).Return(int64(1), nil)
		store.tariffs.On("Update", mock.Anything, tariff).Return(nil)

		got, err := newTariffService(store, "2025-06-15").Update(context.Background(), 1, 3, UpdateTariffInput{
			ClearValidTo: true,
			IsActive:     boolPtr(true),
		})
		require.NoError(t, err)
		assert.Nil(t, got.ValidTo)
		assert.True(t, got.IsActive)
		store.assertExpectations(t)
	})

	t.Run("price change on active tariff does not touch others", func(t *testing.T) {
		store := newMockStore()
		tariff := &model.Tariff{ID: 3, UserID: 1, Name: "Day", PricePerKWh: dec("2"), ValidFrom: date("2025-01-01"), IsActive: true}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.tariffs.On("FindByID", mock.Anything, uint(1), uint(3)).Return(tariff, nil)
		store.tariffs.On("Update", mock.Anything, tariff).Return(nil)

		got, err := newTariffService(store, "2025-06-15").Update(context.Background(), 1, 3, UpdateTariffInput{PricePerKWh: decPtr("2.5")})
		require.NoError(t, err)
		assert.Equal(t, "2.5000", got.PricePerKWh.StringFixed(4))
		store.tariffs.AssertNotCalled(t, "DeactivateOthers", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rename of active tariff past its valid_to", func(t *testing.T) {
		store := newMockStore()
		validTo := date("2025-06-30")
		tariff := &model.Tariff{ID: 3, UserID: 1, Name: "Summer", PricePerKWh: dec("2"), ValidFrom: date("2025-01-01"), ValidTo: &validTo, IsActive: true}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.tariffs.On("FindByID", mock.Anything, uint(1), uint(3)).Return(tariff, nil)
		store.tariffs.On("Update", mock.Anything, tariff).Return(nil)

		got, err := newTariffService(store, "2025-07-15").Update(context.Background(), 1, 3, UpdateTariffInput{Name: strPtr("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		assert.True(t, got.IsActive)
	})

	t.Run("moving valid_to of active tariff into the past", func(t *testing.T) {
		store := newMockStore()
		tariff := &model.Tariff{ID: 3, UserID: 1, Name: "Day", PricePerKWh: dec("2"), ValidFrom: date("2025-01-01"), IsActive: true}
		store.users.On("LockByID", mock.Anything, uint(1)).Return(&model.User{ID: 1}, nil)
		store.tariffs.On("FindByID", mock.Anything, uint(1), uint(3)).Return(tariff, nil)

		_, err := newTariffService(store, "2025-07-15").Update(context.Background(), 1, 3, UpdateTariffInput{ValidTo: strPtr("2025-06-30")})
		assert.ErrorIs(t, err, apperrors.ErrTariffNotActiveNow)
		store.tariffs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestTariffService_Delete(t *testing.T) {
	store := newMockStore()
	store.tariffs.On("Delete", mock.Anything, uint(1), uint(4)).Return(gorm.ErrRecordNotFound)

	err := newTariffService(store, "2025-06-15").Delete(context.Background(), 1, 4)
	assert.ErrorIs(t, err, apperrors.ErrTariffNotFound)
}
