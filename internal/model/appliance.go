package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Appliance is a household device consumption can be attributed to.
type Appliance struct {
	ID               uint                `json:"id" gorm:"primaryKey"`
	UserID           uint                `json:"user_id" gorm:"not null;index"`
	Name             string              `json:"name" gorm:"size:100;not null"`
	EstimatedPowerKW decimal.NullDecimal `json:"estimated_power_kw" gorm:"column:estimated_power_kw;type:decimal(10,3)"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// HasPower reports whether the appliance has a usable power estimate.
func (a *Appliance) HasPower() bool {
	return a.EstimatedPowerKW.Valid && a.EstimatedPowerKW.Decimal.IsPositive()
}
