package models

import "time"

// Report status values.
const (
	ReportPending  = "pending"
	ReportResolved = "resolved"
)

// Report flags a post, or a specific comment within it, for moderator
// review. CommentID nil means the report targets the post itself.
// ResolvedAt is set exactly when Status becomes resolved.
type Report struct {
	ReportID   string     `gorm:"primaryKey;size:32" json:"report_id"`
	PostID     string     `gorm:"size:8;not null;index" json:"post_id"`
	CommentID  *string    `gorm:"size:10" json:"comment_id,omitempty"`
	Flag       string     `gorm:"type:text;not null" json:"flag"`
	Status     string     `gorm:"size:16;not null;default:pending;index" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
