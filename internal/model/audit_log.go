package model

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions.
const (
	AuditActionUserUpdated = "user.updated"
)

// AuditLog is an append-only record of an administrative change.
type AuditLog struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	AdminID      uint           `json:"admin_id" gorm:"not null;index"`
	Action       string         `json:"action" gorm:"size:64;not null;index"`
	TargetUserID *uint          `json:"target_user_id" gorm:"index"`
	Details      datatypes.JSON `json:"details" gorm:"type:json"`
	CreatedAt    time.Time      `json:"created_at" gorm:"index"`
}
