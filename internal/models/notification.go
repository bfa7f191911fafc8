package models

import "time"

// Notification status values.
const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

// Notification is a per-user inbox entry pointing at a post, optionally
// anchored to a specific comment via the link fragment.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserToken   string    `gorm:"size:64;not null;index" json:"user"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Link        string    `gorm:"type:text;not null" json:"link"`
	Status      string    `gorm:"size:8;not null;default:unread" json:"status"`
	CreatedAt   time.Time `json:"timestamp"`
}
