package models

import "time"

// Security log entry types.
const (
	SecurityAdminLogin       = "admin_login"
	SecurityModerationAction = "moderation_action"
)

// SecurityLog records privileged events for later audit.
type SecurityLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Type      string    `gorm:"column:type_;size:32;not null" json:"type_"`
	Detail    string    `gorm:"type:text;not null" json:"detail"`
	CreatedAt time.Time `json:"timestamp"`
}
