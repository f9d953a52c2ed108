package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "energytracker/internal/errors"
	"energytracker/internal/model"
	"energytracker/internal/repository"
)

// ApplianceInput carries appliance fields. On update nil fields are kept and
// ClearPower removes the power estimate.
type ApplianceInput struct {
	Name             *string
	EstimatedPowerKW *decimal.Decimal
	ClearPower       bool
}

// ApplianceService manages a user's appliances.
type ApplianceService interface {
	List(ctx context.Context, userID uint) ([]model.Appliance, error)
	Get(ctx context.Context, userID, id uint) (*model.Appliance, error)
	Create(ctx context.Context, userID uint, in ApplianceInput) (*model.Appliance, error)
	Update(ctx context.Context, userID, id uint, in ApplianceInput) (*model.Appliance, error)
	Delete(ctx context.Context, userID, id uint) error
}

type applianceService struct {
	store repository.Store
}

// NewApplianceService creates a new appliance service.
func NewApplianceService(store repository.Store) ApplianceService {
	return &applianceService{store: store}
}

func (s *applianceService) List(ctx context.Context, userID uint) ([]model.Appliance, error) {
	appliances, err := s.store.Appliances().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list appliances: %w", err)
	}
	return appliances, nil
}

func (s *applianceService) Get(ctx context.Context, userID, id uint) (*model.Appliance, error) {
	return findAppliance(ctx, s.store, userID, id)
}

func (s *applianceService) Create(ctx context.Context, userID uint, in ApplianceInput) (*model.Appliance, error) {
	appliance := &model.Appliance{UserID: userID}
	if in.Name == nil {
		return nil, apperrors.InvalidField("name", "is required")
	}
	if err := applyAppliance(appliance, in); err != nil {
		return nil, err
	}
	if err := s.store.Appliances().Create(ctx, appliance); err != nil {
		return nil, fmt.Errorf("create appliance: %w", err)
	}
	return appliance, nil
}

func (s *applianceService) Update(ctx context.Context, userID, id uint, in ApplianceInput) (*model.Appliance, error) {
	appliance, err := findAppliance(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}
	if err := applyAppliance(appliance, in); err != nil {
		return nil, err
	}
	if err := s.store.Appliances().Update(ctx, appliance); err != nil {
		return nil, fmt.Errorf("update appliance: %w", err)
	}
	return appliance, nil
}

// Delete removes the appliance and detaches its consumption records in the
// same transaction. The records keep their kWh and cost.
func (s *applianceService) Delete(ctx context.Context, userID, id uint) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := findAppliance(ctx, tx, userID, id); err != nil {
			return err
		}
		if err := tx.Consumption().DetachAppliance(ctx, userID, id); err != nil {
			return fmt.Errorf("detach appliance: %w", err)
		}
		if err := tx.Appliances().Delete(ctx, userID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrApplianceNotFound
			}
			return fmt.Errorf("delete appliance: %w", err)
		}
		return nil
	})
}

func applyAppliance(appliance *model.Appliance, in ApplianceInput) error {
	if in.Name != nil {
		name, err := requiredName(*in.Name)
		if err != nil {
			return err
		}
		appliance.Name = name
	}
	switch {
	case in.ClearPower:
		appliance.EstimatedPowerKW = decimal.NullDecimal{}
	case in.EstimatedPowerKW != nil:
		power, err := positiveDecimal("estimated_power_kw", *in.EstimatedPowerKW, KWhPlaces)
		if err != nil {
			return err
		}
		appliance.EstimatedPowerKW = decimal.NewNullDecimal(power)
	}
	return nil
}

func findAppliance(ctx context.Context, store repository.Store, userID, id uint) (*model.Appliance, error) {
	appliance, err := store.Appliances().FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrApplianceNotFound
		}
		return nil, fmt.Errorf("find appliance: %w", err)
	}
	return appliance, nil
}
