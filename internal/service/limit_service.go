package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "energytracker/internal/errors"
	"energytracker/internal/metrics"
	"energytracker/internal/model"
	"energytracker/internal/period"
	"energytracker/internal/repository"
)

// CreateLimitInput carries a new limit. PeriodEnd is required for custom
// periods and optional (verified) for the others.
type CreateLimitInput struct {
	LimitKWh              decimal.Decimal
	PeriodType            string
	PeriodStart           string
	PeriodEnd             *string
	AlertEnabled          *bool
	AlertThresholdPercent *int
}

// UpdateLimitInput carries a partial limit update; nil fields are kept.
type UpdateLimitInput struct {
	LimitKWh              *decimal.Decimal
	PeriodType            *string
	PeriodStart           *string
	PeriodEnd             *string
	AlertEnabled          *bool
	AlertThresholdPercent *int
}

// LimitService manages consumption limits and keeps limits of the same
// period type from overlapping.
type LimitService interface {
	List(ctx context.Context, userID uint, periodType *string) ([]model.Limit, error)
	Get(ctx context.Context, userID, id uint) (*model.Limit, error)
	Create(ctx context.Context, userID uint, in CreateLimitInput) (*model.Limit, error)
	Update(ctx context.Context, userID, id uint, in UpdateLimitInput) (*model.Limit, error)
	Delete(ctx context.Context, userID, id uint) error
}

type limitService struct {
	store repository.Store
}

// NewLimitService creates a new limit service.
func NewLimitService(store repository.Store) LimitService {
	return &limitService{store: store}
}

func (s *limitService) List(ctx context.Context, userID uint, periodType *string) ([]model.Limit, error) {
	var filter *period.Type
	if periodType != nil && *periodType != "" {
		pt, err := period.ParseType(*periodType)
		if err != nil {
			return nil, err
		}
		filter = &pt
	}
	limits, err := s.store.Limits().ListByUser(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("list limits: %w", err)
	}
	return limits, nil
}

func (s *limitService) Get(ctx context.Context, userID, id uint) (*model.Limit, error) {
	return findLimit(ctx, s.store, userID, id)
}

func (s *limitService) Create(ctx context.Context, userID uint, in CreateLimitInput) (*model.Limit, error) {
	limitKWh, err := positiveDecimal("limit_kwh", in.LimitKWh, KWhPlaces)
	if err != nil {
		return nil, err
	}
	pt, err := period.ParseType(in.PeriodType)
	if err != nil {
		return nil, err
	}
	start, err := period.ParseDate("period_start", in.PeriodStart)
	if err != nil {
		return nil, err
	}
	end, err := period.ResolveEnd(pt, start, in.PeriodEnd)
	if err != nil {
		return nil, err
	}

	limit := &model.Limit{
		UserID:                userID,
		LimitKWh:              limitKWh,
		PeriodType:            pt,
		PeriodStart:           start,
		PeriodEnd:             end,
		AlertEnabled:          true,
		AlertThresholdPercent: model.DefaultAlertThresholdPercent,
	}
	if in.AlertEnabled != nil {
		limit.AlertEnabled = *in.AlertEnabled
	}
	if in.AlertThresholdPercent != nil {
		if err := validateThreshold(*in.AlertThresholdPercent); err != nil {
			return nil, err
		}
		limit.AlertThresholdPercent = *in.AlertThresholdPercent
	}

	err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := ensureNoOverlap(ctx, tx, limit); err != nil {
			return err
		}
		if err := tx.Limits().Create(ctx, limit); err != nil {
			return fmt.Errorf("create limit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return limit, nil
}

func (s *limitService) Update(ctx context.Context, userID, id uint, in UpdateLimitInput) (*model.Limit, error) {
	var result *model.Limit
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Users().LockByID(ctx, userID); err != nil {
			return fmt.Errorf("lock user: %w", err)
		}
		limit, err := findLimit(ctx, tx, userID, id)
		if err != nil {
			return err
		}

		if in.LimitKWh != nil {
			if limit.LimitKWh, err = positiveDecimal("limit_kwh", *in.LimitKWh, KWhPlaces); err != nil {
				return err
			}
		}
		if in.AlertEnabled != nil {
			limit.AlertEnabled = *in.AlertEnabled
		}
		if in.AlertThresholdPercent != nil {
			if err := validateThreshold(*in.AlertThresholdPercent); err != nil {
				return err
			}
			limit.AlertThresholdPercent = *in.AlertThresholdPercent
		}

		periodChanged := false
		if in.PeriodType != nil {
			pt, err := period.ParseType(*in.PeriodType)
			if err != nil {
				return err
			}
			periodChanged = periodChanged || pt != limit.PeriodType
			limit.PeriodType = pt
		}
		if in.PeriodStart != nil {
			start, err := period.ParseDate("period_start", *in.PeriodStart)
			if err != nil {
				return err
			}
			periodChanged = periodChanged || !start.Equal(limit.PeriodStart)
			limit.PeriodStart = start
		}
		if periodChanged || in.PeriodEnd != nil {
			supplied := in.PeriodEnd
			if supplied == nil && limit.PeriodType == period.Custom {
				stored := period.FormatDate(limit.PeriodEnd)
				supplied = &stored
			}
			if limit.PeriodEnd, err = period.ResolveEnd(limit.PeriodType, limit.PeriodStart, supplied); err != nil {
				return err
			}
		}

		if err := ensureNoOverlap(ctx, tx, limit); err != nil {
			return err
		}
		if err := tx.Limits().Update(ctx, limit); err != nil {
			return fmt.Errorf("update limit: %w", err)
		}
		result = limit
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *limitService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.store.Limits().Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrLimitNotFound
		}
		return fmt.Errorf("delete limit: %w", err)
	}
	return nil
}

// ensureNoOverlap locks the owner row and rejects limit when another limit
// of the same type covers any of its days. The repository query narrows the
// candidates; Range.Overlaps decides. Must run inside a transaction.
func ensureNoOverlap(ctx context.Context, tx repository.Store, limit *model.Limit) error {
	if _, err := tx.Users().LockByID(ctx, limit.UserID); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	candidates, err := tx.Limits().FindOverlapping(ctx, limit.UserID, limit.PeriodType, limit.PeriodStart, limit.PeriodEnd, limit.ID)
	if err != nil {
		return fmt.Errorf("find overlapping limits: %w", err)
	}
	for _, existing := range candidates {
		if existing.ID == limit.ID || existing.PeriodType != limit.PeriodType {
			continue
		}
		if limit.Range().Overlaps(existing.Range()) {
			metrics.ObserveConflict(apperrors.ErrLimitOverlap.Code)
			return apperrors.ErrLimitOverlap.WithDetail("existing_limit_id", existing.ID)
		}
	}
	return nil
}

func validateThreshold(percent int) error {
	if percent < 1 || percent > 100 {
		return apperrors.InvalidField("alert_threshold_percent", "must be between 1 and 100")
	}
	return nil
}

func findLimit(ctx context.Context, store repository.Store, userID, id uint) (*model.Limit, error) {
	limit, err := store.Limits().FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLimitNotFound
		}
		return nil, fmt.Errorf("find limit: %w", err)
	}
	return limit, nil
}
