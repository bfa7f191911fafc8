package dto

import (
	"encoding/json"
	"time"

	"github.com/stackit-forum/stackit-api/internal/models"
)

// CommentCreateRequest represents the payload used to submit a comment or a
// reply. Body and Gif are mutually complementary; at least one must be
// present, which the service enforces beyond the struct tags.
type CommentCreateRequest struct {
	Body     string      `json:"body" validate:"omitempty,max=4000"`
	Gif      *models.Gif `json:"gif" validate:"omitempty"`
	ParentID string      `json:"parent_id" validate:"omitempty,len=8"`
}

// CommentResponse is the serialized representation of a comment.
type CommentResponse struct {
	ID               string      `json:"id"`
	PostID           string      `json:"post_id"`
	Body             string      `json:"body"`
	Gif              *models.Gif `json:"gif,omitempty"`
	ParentID         string      `json:"parent_id,omitempty"`
	Level            int         `json:"level"`
	Upvotes          int         `json:"upvotes"`
	Downvotes        int         `json:"downvotes"`
	ModerationStatus string      `json:"moderation_status"`
	IsAccepted       int         `json:"is_accepted"`
	Author           string      `json:"author,omitempty"`
	Timestamp        time.Time   `json:"timestamp"`
}

// CommentNode is a comment carrying its nested replies.
type CommentNode struct {
	CommentResponse
	Replies []*CommentNode `json:"replies"`
}

// NewCommentResponse converts a model into a DTO.
func NewCommentResponse(comment models.Comment) CommentResponse {
	var gif *models.Gif
	if len(comment.Gif) > 0 {
		parsed := models.Gif{}
		if err := json.Unmarshal(comment.Gif, &parsed); err == nil && parsed.Src != "" {
			gif = &parsed
		}
	}

	parentID := ""
	if comment.ParentID != nil {
		parentID = *comment.ParentID
	}

	author := ""
	if comment.Author != nil {
		author = *comment.Author
	}

	return CommentResponse{
		ID:               comment.ID,
		PostID:           comment.PostID,
		Body:             comment.Body,
		Gif:              gif,
		ParentID:         parentID,
		Level:            comment.Level,
		Upvotes:          comment.Upvotes,
		Downvotes:        comment.Downvotes,
		ModerationStatus: comment.ModerationStatus,
		IsAccepted:       comment.IsAccepted,
		Author:           author,
		Timestamp:        comment.CreatedAt,
	}
}

// NewCommentResponseSlice converts a slice of models into DTOs.
func NewCommentResponseSlice(comments []models.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, NewCommentResponse(comment))
	}
	return out
}
