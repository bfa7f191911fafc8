package models

import (
	"time"

	"gorm.io/datatypes"
)

// Moderation status values shared by posts and comments.
const (
	ModerationPending  = "pending"
	ModerationApproved = "approved"
	ModerationRejected = "rejected"
)

// Tag is a single label attached to a post.
type Tag struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Post represents a question submitted to the forum.
type Post struct {
	ID               string         `gorm:"primaryKey;size:8" json:"id"`
	Title            string         `gorm:"type:text;not null" json:"title"`
	Body             string         `gorm:"type:text;not null" json:"body"`
	Tags             datatypes.JSON `gorm:"type:json" json:"tags"`
	Upvotes          int            `gorm:"not null;default:0" json:"upvotes"`
	Downvotes        int            `gorm:"not null;default:0" json:"downvotes"`
	CommentCount     int            `gorm:"not null;default:0" json:"comment_count"`
	ModerationStatus string         `gorm:"size:16;not null;default:pending;index" json:"moderation_status"`
	Author           *string        `gorm:"size:64;index" json:"author,omitempty"`
	CreatedAt        time.Time      `json:"timestamp"`
}
