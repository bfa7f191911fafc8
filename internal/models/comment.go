package models

import (
	"time"

	"gorm.io/datatypes"
)

// Gif describes an animated image attached to a comment in place of, or
// alongside, a text body.
type Gif struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Comment represents an answer or a reply within a post's thread.
// ParentID is nil for top-level comments; Level is the nesting depth,
// always parent.Level+1.
type Comment struct {
	ID               string         `gorm:"primaryKey;size:10" json:"id"`
	PostID           string         `gorm:"size:8;not null;index" json:"post_id"`
	Body             string         `gorm:"type:text" json:"body"`
	Gif              datatypes.JSON `gorm:"type:json" json:"gif,omitempty"`
	ParentID         *string        `gorm:"size:10;index" json:"parent_id,omitempty"`
	Level            int            `gorm:"not null;default:0" json:"level"`
	Upvotes          int            `gorm:"not null;default:0" json:"upvotes"`
	Downvotes        int            `gorm:"not null;default:0" json:"downvotes"`
	ModerationStatus string         `gorm:"size:16;not null;default:pending;index" json:"moderation_status"`
	IsAccepted       int            `gorm:"not null;default:0" json:"is_accepted"`
	Author           *string        `gorm:"size:64;index" json:"author,omitempty"`
	CreatedAt        time.Time      `json:"timestamp"`
}
