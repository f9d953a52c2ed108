package model

import (
	"time"

	"github.com/shopspring/decimal"

	"energytracker/internal/period"
)

// DefaultAlertThresholdPercent is used when a limit is created without a threshold.
const DefaultAlertThresholdPercent = 80

// Limit caps consumption over [PeriodStart, PeriodEnd]. Limits of the same
// user and period type never overlap.
type Limit struct {
	ID                    uint            `json:"id" gorm:"primaryKey"`
	UserID                uint            `json:"user_id" gorm:"not null;index:idx_limits_user_type_start,priority:1"`
	LimitKWh              decimal.Decimal `json:"limit_kwh" gorm:"column:limit_kwh;type:decimal(12,3);not null"`
	PeriodType            period.Type     `json:"period_type" gorm:"type:varchar(10);not null;index:idx_limits_user_type_start,priority:2"`
	PeriodStart           time.Time       `json:"period_start" gorm:"type:date;not null;index:idx_limits_user_type_start,priority:3"`
	PeriodEnd             time.Time       `json:"period_end" gorm:"type:date;not null"`
	AlertEnabled          bool            `json:"alert_enabled" gorm:"not null"`
	AlertThresholdPercent int             `json:"alert_threshold_percent" gorm:"not null"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// TableName avoids the reserved-looking "limits".
func (Limit) TableName() string {
	return "consumption_limits"
}

// Range returns the inclusive period covered by the limit.
func (l *Limit) Range() period.Range {
	return period.Range{Start: l.PeriodStart, End: l.PeriodEnd}
}
