package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConsumptionRecord is one usage entry. AppliedPricePerKWh is a snapshot of
// the active tariff at write time; later tariff edits never touch it.
type ConsumptionRecord struct {
	ID                 uint            `json:"id" gorm:"primaryKey"`
	UserID             uint            `json:"user_id" gorm:"not null;index:idx_consumption_user_date,priority:1"`
	ApplianceID        *uint           `json:"appliance_id" gorm:"index"`
	ConsumptionKWh     decimal.Decimal `json:"consumption_kwh" gorm:"column:consumption_kwh;type:decimal(12,3);not null"`
	AppliedPricePerKWh decimal.Decimal `json:"applied_price_per_kwh" gorm:"column:applied_price_per_kwh;type:decimal(12,4);not null"`
	Cost               decimal.Decimal `json:"cost" gorm:"type:decimal(14,4);not null"`
	RecordDate         time.Time       `json:"record_date" gorm:"type:date;not null;index:idx_consumption_user_date,priority:2"`
	Notes              string          `json:"notes" gorm:"size:500"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	// Relations
	Appliance *Appliance `json:"-" gorm:"foreignKey:ApplianceID;constraint:OnDelete:SET NULL"`
}

// TableName keeps the table name explicit.
func (ConsumptionRecord) TableName() string {
	return "consumption_records"
}
