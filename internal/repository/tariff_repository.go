package repository

import (
	"context"

	"gorm.io/gorm"

	"energytracker/internal/model"
)

// TariffRepository defines tariff persistence operations.
type TariffRepository interface {
	Create(ctx context.Context, tariff *model.Tariff) error
	Update(ctx context.Context, tariff *model.Tariff) error
	FindByID(ctx context.Context, userID, id uint) (*model.Tariff, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Tariff, error)
	ListActive(ctx context.Context, userID uint) ([]model.Tariff, error)
	// DeactivateOthers clears is_active on every tariff of the user except
	// keepID and returns how many rows changed.
	DeactivateOthers(ctx context.Context, userID, keepID uint) (int64, error)
	Delete(ctx context.Context, userID, id uint) error
}

type tariffRepository struct {
	db *gorm.DB
}

// NewTariffRepository creates a new tariff repository.
func NewTariffRepository(db *gorm.DB) TariffRepository {
	return &tariffRepository{db: db}
}

func (r *tariffRepository) Create(ctx context.Context, tariff *model.Tariff) error {
	return r.db.WithContext(ctx).Create(tariff).Error
}

func (r *tariffRepository) Update(ctx context.Context, tariff *model.Tariff) error {
	return r.db.WithContext(ctx).Save(tariff).Error
}

func (r *tariffRepository) FindByID(ctx context.Context, userID, id uint) (*model.Tariff, error) {
	var tariff model.Tariff
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&tariff).Error; err != nil {
		return nil, err
	}
	return &tariff, nil
}

func (r *tariffRepository) ListByUser(ctx context.Context, userID uint) ([]model.Tariff, error) {
	var tariffs []model.Tariff
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("valid_from DESC, id DESC").Find(&tariffs).Error; err != nil {
		return nil, err
	}
	return tariffs, nil
}

func (r *tariffRepository) ListActive(ctx context.Context, userID uint) ([]model.Tariff, error) {
	var tariffs []model.Tariff
	if err := r.db.WithContext(ctx).Where("user_id = ? AND is_active = ?", userID, true).Order("id").Find(&tariffs).Error; err != nil {
		return nil, err
	}
	return tariffs, nil
}

func (r *tariffRepository) DeactivateOthers(ctx context.Context, userID, keepID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Tariff{}).
		Where("user_id = ? AND is_active = ? AND id <> ?", userID, true, keepID).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

func (r *tariffRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Tariff{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
