package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"energytracker/internal/model"
)

// ConsumptionFilter narrows a consumption listing. Zero values mean "any".
type ConsumptionFilter struct {
	UserID      uint
	DateFrom    *time.Time
	DateTo      *time.Time
	ApplianceID *uint
	Limit       int
	Offset      int
}

// ConsumptionRepository defines consumption record persistence operations.
type ConsumptionRepository interface {
	Create(ctx context.Context, record *model.ConsumptionRecord) error
	Update(ctx context.Context, record *model.ConsumptionRecord) error
	FindByID(ctx context.Context, userID, id uint) (*model.ConsumptionRecord, error)
	List(ctx context.Context, filter ConsumptionFilter) ([]model.ConsumptionRecord, error)
	Delete(ctx context.Context, userID, id uint) error
	// DetachAppliance clears appliance_id on the user's records pointing at applianceID.
	DetachAppliance(ctx context.Context, userID, applianceID uint) error
	// SumKWh totals consumption_kwh for record_date in [from, to].
	SumKWh(ctx context.Context, userID uint, from, to time.Time) (decimal.Decimal, error)
}

type consumptionRepository struct {
	db *gorm.DB
}

// NewConsumptionRepository creates a new consumption repository.
func NewConsumptionRepository(db *gorm.DB) ConsumptionRepository {
	return &consumptionRepository{db: db}
}

func (r *consumptionRepository) Create(ctx context.Context, record *model.ConsumptionRecord) error {
	return r.db.WithContext(ctx).Omit("Appliance").Create(record).Error
}

func (r *consumptionRepository) Update(ctx context.Context, record *model.ConsumptionRecord) error {
	return r.db.WithContext(ctx).Omit("Appliance").Save(record).Error
}

func (r *consumptionRepository) FindByID(ctx context.Context, userID, id uint) (*model.ConsumptionRecord, error) {
	var record model.ConsumptionRecord
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *consumptionRepository) List(ctx context.Context, filter ConsumptionFilter) ([]model.ConsumptionRecord, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", filter.UserID)
	if filter.DateFrom != nil {
		q = q.Where("record_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		q = q.Where("record_date <= ?", *filter.DateTo)
	}
	if filter.ApplianceID != nil {
		q = q.Where("appliance_id = ?", *filter.ApplianceID)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit).Offset(filter.Offset)
	}

	var records []model.ConsumptionRecord
	if err := q.Order("record_date DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *consumptionRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.ConsumptionRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *consumptionRepository) DetachAppliance(ctx context.Context, userID, applianceID uint) error {
	return r.db.WithContext(ctx).Model(&model.ConsumptionRecord{}).
		Where("user_id = ? AND appliance_id = ?", userID, applianceID).
		Update("appliance_id", nil).Error
}

func (r *consumptionRepository) SumKWh(ctx context.Context, userID uint, from, to time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.ConsumptionRecord{}).
		Select("COALESCE(SUM(consumption_kwh), 0) AS total").
		Where("user_id = ? AND record_date >= ? AND record_date <= ?", userID, from, to).
		Scan(&row).Error
	if err != nil {
		return decimal.Zero, err
	}
	return row.Total, nil
}
