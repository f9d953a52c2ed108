package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"energytracker/internal/model"
	"energytracker/internal/period"
)

// LimitRepository defines limit persistence operations.
type LimitRepository interface {
	Create(ctx context.Context, limit *model.Limit) error
	Update(ctx context.Context, limit *model.Limit) error
	FindByID(ctx context.Context, userID, id uint) (*model.Limit, error)
	ListByUser(ctx context.Context, userID uint, periodType *period.Type) ([]model.Limit, error)
	// FindOverlapping returns limits of the same user and period type whose
	// inclusive range intersects [start, end], skipping excludeID.
	FindOverlapping(ctx context.Context, userID uint, periodType period.Type, start, end time.Time, excludeID uint) ([]model.Limit, error)
	Delete(ctx context.Context, userID, id uint) error
}

type limitRepository struct {
	db *gorm.DB
}

// NewLimitRepository creates a new limit repository.
func NewLimitRepository(db *gorm.DB) LimitRepository {
	return &limitRepository{db: db}
}

func (r *limitRepository) Create(ctx context.Context, limit *model.Limit) error {
	return r.db.WithContext(ctx).Create(limit).Error
}

func (r *limitRepository) Update(ctx context.Context, limit *model.Limit) error {
	return r.db.WithContext(ctx).Save(limit).Error
}

func (r *limitRepository) FindByID(ctx context.Context, userID, id uint) (*model.Limit, error) {
	var limit model.Limit
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&limit).Error; err != nil {
		return nil, err
	}
	return &limit, nil
}

func (r *limitRepository) ListByUser(ctx context.Context, userID uint, periodType *period.Type) ([]model.Limit, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if periodType != nil {
		q = q.Where("period_type = ?", *periodType)
	}
	var limits []model.Limit
	if err := q.Order("period_start DESC, id DESC").Find(&limits).Error; err != nil {
		return nil, err
	}
	return limits, nil
}

func (r *limitRepository) FindOverlapping(ctx context.Context, userID uint, periodType period.Type, start, end time.Time, excludeID uint) ([]model.Limit, error) {
	var limits []model.Limit
	if err := overlapping(r.db.WithContext(ctx), userID, periodType, start, end, excludeID).Find(&limits).Error; err != nil {
		return nil, err
	}
	return limits, nil
}

// overlapping selects limits sharing at least one day with [start, end].
// Both bounds are inclusive: a limit ending on start still overlaps.
func overlapping(db *gorm.DB, userID uint, periodType period.Type, start, end time.Time, excludeID uint) *gorm.DB {
	return db.
		Where("user_id = ? AND period_type = ?", userID, periodType).
		Where("period_start <= ? AND period_end >= ?", end, start).
		Where("id <> ?", excludeID).
		Order("period_start, id")
}

func (r *limitRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Limit{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
