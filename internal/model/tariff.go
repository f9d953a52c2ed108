package model

import (
	"time"

	"github.com/shopspring/decimal"

	"energytracker/internal/period"
)

// Tariff is a price per kWh valid over [ValidFrom, ValidTo]. At most one
// tariff per user has IsActive set.
type Tariff struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"not null;index:idx_tariffs_user_active,priority:1"`
	Name        string          `json:"name" gorm:"size:100;not null"`
	PricePerKWh decimal.Decimal `json:"price_per_kwh" gorm:"column:price_per_kwh;type:decimal(12,4);not null"`
	ValidFrom   time.Time       `json:"valid_from" gorm:"type:date;not null"`
	ValidTo     *time.Time      `json:"valid_to" gorm:"type:date"`
	IsActive    bool            `json:"is_active" gorm:"not null;default:false;index:idx_tariffs_user_active,priority:2"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ValidOn reports whether day lies within the tariff's validity range.
// A nil ValidTo leaves the range open above.
func (t *Tariff) ValidOn(day time.Time) bool {
	if t.ValidTo == nil {
		return !period.Date(day).Before(t.ValidFrom)
	}
	return period.Range{Start: t.ValidFrom, End: *t.ValidTo}.Contains(day)
}
