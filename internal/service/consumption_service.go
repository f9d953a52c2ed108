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

const maxNotesLength = 500

// CreateConsumptionInput carries a new record. Exactly one of ConsumptionKWh
// and UsageHours must be set; RecordDate defaults to today.
type CreateConsumptionInput struct {
	ApplianceID    *uint
	ConsumptionKWh *decimal.Decimal
	UsageHours     *decimal.Decimal
	RecordDate     *string
	Notes          *string
}

// UpdateConsumptionInput carries a partial update. ClearAppliance detaches
// the record from its appliance.
type UpdateConsumptionInput struct {
	ApplianceID    *uint
	ClearAppliance bool
	ConsumptionKWh *decimal.Decimal
	UsageHours     *decimal.Decimal
	RecordDate     *string
	Notes          *string
}

// ConsumptionListFilter narrows List. Dates are YYYY-MM-DD.
type ConsumptionListFilter struct {
	DateFrom    *string
	DateTo      *string
	ApplianceID *uint
	Limit       int
	Offset      int
}

// ConsumptionService records usage and prices it against the active tariff.
type ConsumptionService interface {
	List(ctx context.Context, userID uint, filter ConsumptionListFilter) ([]model.ConsumptionRecord, error)
	Get(ctx context.Context, userID, id uint) (*model.ConsumptionRecord, error)
	Create(ctx context.Context, userID uint, in CreateConsumptionInput) (*model.ConsumptionRecord, error)
	Update(ctx context.Context, userID, id uint, in UpdateConsumptionInput) (*model.ConsumptionRecord, error)
	Delete(ctx context.Context, userID, id uint) error
}

type consumptionService struct {
	store repository.Store
	now   Clock
}

// NewConsumptionService creates a new consumption service.
func NewConsumptionService(store repository.Store, now Clock) ConsumptionService {
	return &consumptionService{store: store, now: now}
}

func (s *consumptionService) List(ctx context.Context, userID uint, filter ConsumptionListFilter) ([]model.ConsumptionRecord, error) {
	q := repository.ConsumptionFilter{
		UserID:      userID,
		ApplianceID: filter.ApplianceID,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if filter.DateFrom != nil {
		from, err := period.ParseDate("date_from", *filter.DateFrom)
		if err != nil {
			return nil, err
		}
		q.DateFrom = &from
	}
	if filter.DateTo != nil {
		to, err := period.ParseDate("date_to", *filter.DateTo)
		if err != nil {
			return nil, err
		}
		q.DateTo = &to
	}
	if q.DateFrom != nil && q.DateTo != nil && q.DateTo.Before(*q.DateFrom) {
		return nil, apperrors.InvalidField("date_to", "must not be before date_from")
	}

	records, err := s.store.Consumption().List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list consumption: %w", err)
	}
	return records, nil
}

func (s *consumptionService) Get(ctx context.Context, userID, id uint) (*model.ConsumptionRecord, error) {
	return findRecord(ctx, s.store, userID, id)
}

func (s *consumptionService) Create(ctx context.Context, userID uint, in CreateConsumptionInput) (*model.ConsumptionRecord, error) {
	if in.ConsumptionKWh != nil && in.UsageHours != nil {
		return nil, apperrors.ErrEitherKWhOrHours
	}
	if in.ConsumptionKWh == nil && in.UsageHours == nil {
		return nil, apperrors.ErrKWhOrHoursRequired
	}

	record := &model.ConsumptionRecord{UserID: userID, RecordDate: period.Today(s.now)}
	if in.RecordDate != nil {
		day, err := period.ParseDate("record_date", *in.RecordDate)
		if err != nil {
			return nil, err
		}
		record.RecordDate = day
	}
	if in.Notes != nil {
		if err := validateNotes(*in.Notes); err != nil {
			return nil, err
		}
		record.Notes = *in.Notes
	}

	var appliance *model.Appliance
	if in.ApplianceID != nil {
		found, err := findAppliance(ctx, s.store, userID, *in.ApplianceID)
		if err != nil {
			return nil, err
		}
		appliance = found
		record.ApplianceID = &found.ID
	}

	kwh, source, err := resolveKWh(in.ConsumptionKWh, in.UsageHours, appliance)
	if err != nil {
		return nil, err
	}
	if err := s.price(ctx, record, kwh); err != nil {
		return nil, err
	}

	if err := s.store.Consumption().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("create consumption: %w", err)
	}
	metrics.ObserveConsumptionRecorded(source)
	return record, nil
}

// Update applies a partial change. The record is re-priced against the
// current active tariff only when its energy amount is recomputed; edits to
// date, notes or appliance alone keep the stored price snapshot.
func (s *consumptionService) Update(ctx context.Context, userID, id uint, in UpdateConsumptionInput) (*model.ConsumptionRecord, error) {
	if in.ConsumptionKWh != nil && in.UsageHours != nil {
		return nil, apperrors.ErrEitherKWhOrHours
	}

	record, err := findRecord(ctx, s.store, userID, id)
	if err != nil {
		return nil, err
	}

	if in.RecordDate != nil {
		day, err := period.ParseDate("record_date", *in.RecordDate)
		if err != nil {
			return nil, err
		}
		record.RecordDate = day
	}
	if in.Notes != nil {
		if err := validateNotes(*in.Notes); err != nil {
			return nil, err
		}
		record.Notes = *in.Notes
	}

	switch {
	case in.ClearAppliance:
		record.ApplianceID = nil
	case in.ApplianceID != nil:
		found, err := findAppliance(ctx, s.store, userID, *in.ApplianceID)
		if err != nil {
			return nil, err
		}
		record.ApplianceID = &found.ID
	}

	source := ""
	if in.ConsumptionKWh != nil || in.UsageHours != nil {
		var appliance *model.Appliance
		if in.UsageHours != nil && record.ApplianceID != nil {
			if appliance, err = findAppliance(ctx, s.store, userID, *record.ApplianceID); err != nil {
				return nil, err
			}
		}
		var kwh decimal.Decimal
		if kwh, source, err = resolveKWh(in.ConsumptionKWh, in.UsageHours, appliance); err != nil {
			return nil, err
		}
		if err := s.price(ctx, record, kwh); err != nil {
			return nil, err
		}
	}

	if err := s.store.Consumption().Update(ctx, record); err != nil {
		return nil, fmt.Errorf("update consumption: %w", err)
	}
	if source != "" {
		metrics.ObserveConsumptionRecorded(source)
	}
	return record, nil
}

func (s *consumptionService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.store.Consumption().Delete(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrRecordNotFound
		}
		return fmt.Errorf("delete consumption: %w", err)
	}
	return nil
}

// price snapshots the active tariff onto record for kwh.
func (s *consumptionService) price(ctx context.Context, record *model.ConsumptionRecord, kwh decimal.Decimal) error {
	tariff, err := ActiveTariff(ctx, s.store, record.UserID)
	if err != nil {
		return err
	}
	cost := ComputeCost(kwh, tariff.PricePerKWh)
	record.ConsumptionKWh = kwh.Round(KWhPlaces)
	record.AppliedPricePerKWh = tariff.PricePerKWh.Round(PricePlaces)
	record.Cost = cost
	return nil
}

// ComputeCost returns kwh × price with both factors and the product rounded
// to their stored precision.
func ComputeCost(kwh, price decimal.Decimal) decimal.Decimal {
	return kwh.Round(KWhPlaces).Mul(price.Round(PricePlaces)).Round(CostPlaces)
}

// ActiveTariff returns the user's single active tariff. No active tariff is
// a validation error; more than one is reported as a conflict listing the
// offending ids.
func ActiveTariff(ctx context.Context, store repository.Store, userID uint) (*model.Tariff, error) {
	active, err := store.Tariffs().ListActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list active tariffs: %w", err)
	}
	switch len(active) {
	case 0:
		return nil, apperrors.ErrNoActiveTariff
	case 1:
		return &active[0], nil
	}
	ids := make([]uint, 0, len(active))
	for _, t := range active {
		ids = append(ids, t.ID)
	}
	metrics.ObserveConflict(apperrors.ErrMultipleActiveTariffs.Code)
	return nil, apperrors.ErrMultipleActiveTariffs.WithDetail("active_tariff_ids", ids)
}

// resolveKWh derives the energy amount from either a direct reading or
// usage hours on an appliance with a power estimate.
func resolveKWh(kwh, hours *decimal.Decimal, appliance *model.Appliance) (decimal.Decimal, string, error) {
	if kwh != nil {
		v, err := positiveDecimal("consumption_kwh", *kwh, KWhPlaces)
		return v, "kwh", err
	}
	if !hours.IsPositive() {
		return decimal.Zero, "", apperrors.InvalidField("usage_hours", "must be a positive number")
	}
	if appliance == nil {
		return decimal.Zero, "", apperrors.ErrApplianceRequired
	}
	if !appliance.HasPower() {
		return decimal.Zero, "", apperrors.ErrAppliancePower.WithDetail("appliance_id", appliance.ID)
	}
	v := appliance.EstimatedPowerKW.Decimal.Mul(*hours).Round(KWhPlaces)
	if !v.IsPositive() {
		return decimal.Zero, "", apperrors.InvalidField("usage_hours", "yields zero consumption")
	}
	return v, "hours", nil
}

func validateNotes(notes string) error {
	if len([]rune(notes)) > maxNotesLength {
		return apperrors.InvalidField("notes", "must be at most 500 characters")
	}
	return nil
}

func findRecord(ctx context.Context, store repository.Store, userID, id uint) (*model.ConsumptionRecord, error) {
	record, err := store.Consumption().FindByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, fmt.Errorf("find consumption: %w", err)
	}
	return record, nil
}
