package repository

import (
	"context"

	"gorm.io/gorm"

	"energytracker/internal/model"
)

// ApplianceRepository defines appliance persistence operations. Every lookup
// is scoped to the owning user.
type ApplianceRepository interface {
	Create(ctx context.Context, appliance *model.Appliance) error
	Update(ctx context.Context, appliance *model.Appliance) error
	FindByID(ctx context.Context, userID, id uint) (*model.Appliance, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Appliance, error)
	// Delete removes the appliance; gorm.ErrRecordNotFound when nothing matched.
	Delete(ctx context.Context, userID, id uint) error
}

type applianceRepository struct {
	db *gorm.DB
}

// NewApplianceRepository creates a new appliance repository.
func NewApplianceRepository(db *gorm.DB) ApplianceRepository {
	return &applianceRepository{db: db}
}

func (r *applianceRepository) Create(ctx context.Context, appliance *model.Appliance) error {
	return r.db.WithContext(ctx).Create(appliance).Error
}

func (r *applianceRepository) Update(ctx context.Context, appliance *model.Appliance) error {
	return r.db.WithContext(ctx).Save(appliance).Error
}

func (r *applianceRepository) FindByID(ctx context.Context, userID, id uint) (*model.Appliance, error) {
	var appliance model.Appliance
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&appliance).Error; err != nil {
		return nil, err
	}
	return &appliance, nil
}

func (r *applianceRepository) ListByUser(ctx context.Context, userID uint) ([]model.Appliance, error) {
	var appliances []model.Appliance
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("name, id").Find(&appliances).Error; err != nil {
		return nil, err
	}
	return appliances, nil
}

func (r *applianceRepository) Delete(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Appliance{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
