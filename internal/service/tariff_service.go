package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "energytracker/internal/errors"
	"energytracker/internal/metrics"
	"energytracker/internal/model"
	"energytracker/internal/period"
	"energytracker/internal/repository"
)

// CreateTariffInput carries a new tariff. Dates are YYYY-MM-DD.
type CreateTariffInput struct {
	Name        string
	PricePerKWh decimal.Decimal
	ValidFrom   string
	ValidTo     *string
	IsActive    bool
}

// UpdateTariffInput carries a partial tariff update; nil fields are kept.
// ClearValidTo removes the upper bound.
type UpdateTariffInput struct {
	Name         *string
	PricePerKWh  *decimal.Decimal
	ValidFrom    *string
	ValidTo      *string
	ClearValidTo bool
	IsActive     *bool
}

// TariffService manages tariffs and the single-active-tariff invariant.
type TariffService interface {
	List(ctx context.Context, userID uint) ([]model.Tariff, error)
	Get(ctx context.Context, userID, id uint) (*model.Tariff, error)
	Create(ctx context.Context, userID uint, in CreateTariffInput) (*model.Tariff, error)
	Update(ctx context.Context, userID, id uint, in UpdateTariffInput) (*model.Tariff, error)
	Delete(ctx context.Context, userID, id uint) error
	Activate(ctx context.Context, userID, id uint) (*model.Tariff, error)
}

type tariffService struct {
	store  repository.Store
	now    Clock
	logger *zap.Logger
}

// NewTariffService creates a new tariff service.
func NewTariffService(store repository.Store, now Clock, logger *zap.Logger) TariffService {
	return &tariffService{store: store, now: now, logger: logger}
}

func (s *tariffService) List(ctx context.Context, userID uint) ([]model.Tariff, error) {
	tariffs, err := s.store.Tariffs().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tariffs: %w", err)
	}
	return tariffs, nil
}

func (s *tariffService) Get(ctx context.Context, userID, id uint) (*model.Tariff, error) {
	return findTariff(ctx, s.store, userID, id)
}

func (s *tariffService) Create(ctx context.Context, userID uint, in CreateTariffInput) (*model.Tariff, error) {
	name, err := requiredName(in.Name)
	if err != nil {
		return nil, err
	}
	price, err := positiveDecimal("price_per_kwh", in.PricePerKWh, PricePlaces)
	if err != nil {
		return nil, err
	}
	from, err := period.ParseDate("valid_from", in.ValidFrom)
	if err != nil {
		return nil, err
	}
	var to *time.Time
	if in.ValidTo != nil {
		parsed, err := period.ParseDate("valid_to", *in.ValidTo)
		if err != nil {
			return nil, err
		}
		to = &parsed
	}
	if to != nil && from.After(*to) {
		return nil, apperrors.ErrTariffRange
	}

	tariff := &model.Tariff{
		UserID:      userID,
		Name:        name,
		PricePerKWh: price,
		ValidFrom:   from,
		ValidTo:     to,
		IsActive:    in.IsActive,
	}

	if !tariff.IsActive {
		if err := s.store.Tariffs().Create(ctx, tariff); err != nil {
			return nil, fmt.Errorf("create tariff: %w", err)
		}
		return tariff, nil
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := s.makeSoleActive(ctx, tx, tariff); err != nil {
			return err
		}
		return tx.Tariffs().Create(ctx, tariff)
	})
	if err != nil {
		return nil, err
	}
	return tariff, nil
}

func (s *tariffService) Update(ctx context.Context, userID, id uint, in UpdateTariffInput) (*model.Tariff, error) {
	var result *model.Tariff
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Users().LockByID(ctx, userID); err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		tariff, err := findTariff(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		wasActive := tariff.IsActive

		if in.Name != nil {
			if tariff.Name, err = requiredName(*in.Name); err != nil {
				return err
			}
		}
		if in.PricePerKWh != nil {
			if tariff.PricePerKWh, err = positiveDecimal("price_per_kwh", *in.PricePerKWh, PricePlaces); err != nil {
				return err
			}
		}
		if in.ValidFrom != nil {
			if tariff.ValidFrom, err = period.ParseDate("valid_from", *in.ValidFrom); err != nil {
				return err
			}
		}
		switch {
		case in.ClearValidTo:
			tariff.ValidTo = nil
		case in.ValidTo != nil:
			to, err := period.ParseDate("valid_to", *in.ValidTo)
			if err != nil {
				return err
			}
			tariff.ValidTo = &to
		}
		if tariff.ValidTo != nil && tariff.ValidFrom.After(*tariff.ValidTo) {
			return apperrors.ErrTariffRange
		}
		if in.IsActive != nil {
			tariff.IsActive = *in.IsActive
		}

		datesChanged := in.ValidFrom != nil || in.ValidTo != nil || in.ClearValidTo
		activating := in.IsActive != nil && *in.IsActive
		if tariff.IsActive && (activating || datesChanged) {
			if !tariff.ValidOn(period.Today(s.now)) {
				return apperrors.ErrTariffNotActiveNow
			}
			if !wasActive {
				if err := s.makeSoleActive(ctx, tx, tariff); err != nil {
					return err
				}
			}
		}

		if err := tx.Tariffs().Update(ctx, tariff); err != nil {
			return fmt.Errorf("update tariff: %w", err)
		}
		result = tariff
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *tariffService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.store.Tariffs().Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrTariffNotFound
		}
		return fmt.Errorf("delete tariff: %w", err)
	}
	return nil
}

// Activate makes the tariff the user's only active one. Activating an
// already active tariff returns it unchanged without writing.
func (s *tariffService) Activate(ctx context.Context, userID, id uint) (*model.Tariff, error) {
	var (
		result  *model.Tariff
		changed bool
	)
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Users().LockByID(ctx, userID); err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		tariff, err := findTariff(ctx, tx, userID, id)
		if err != nil {
			return err
		}
		result = tariff
		if tariff.IsActive {
			return nil
		}

		if err := s.makeSoleActive(ctx, tx, tariff); err != nil {
			return err
		}
		tariff.IsActive = true
		if err := tx.Tariffs().Update(ctx, tariff); err != nil {
			return fmt.Errorf("activate tariff: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.ObserveTariffActivation("activated")
	} else {
		metrics.ObserveTariffActivation("noop")
	}
	return result, nil
}

// makeSoleActive checks that tariff may be active today and deactivates every
// other active tariff of its owner. Must run inside a transaction; it takes
// the owner row lock itself so concurrent activations serialize.
func (s *tariffService) makeSoleActive(ctx context.Context, tx repository.Store, tariff *model.Tariff) error {
	if _, err := tx.Users().LockByID(ctx, tariff.UserID); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	if !tariff.ValidOn(period.Today(s.now)) {
		metrics.ObserveTariffActivation("rejected")
		return apperrors.ErrTariffNotActiveNow
	}
	deactivated, err := tx.Tariffs().DeactivateOthers(ctx, tariff.UserID, tariff.ID)
	if err != nil {
		return fmt.Errorf("deactivate tariffs: %w", err)
	}
	s.logger.Info("tariff activated",
		zap.Uint("user_id", tariff.UserID),
		zap.Uint("tariff_id", tariff.ID),
		zap.Int64("deactivated", deactivated),
	)
	return nil
}

func findTariff(ctx context.Context, store repository.Store, userID, id uint) (*model.Tariff, error) {
	tariff, err := store.Tariffs().FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTariffNotFound
		}
		return nil, fmt.Errorf("find tariff: %w", err)
	}
	return tariff, nil
}
