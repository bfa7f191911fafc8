package dto

import (
	"time"

	"github.com/stackit-forum/stackit-api/internal/models"
)

// ReportCreateRequest flags a post, or a specific comment within it.
type ReportCreateRequest struct {
	PostID    string `json:"post_id" validate:"required,len=6"`
	CommentID string `json:"comment_id" validate:"omitempty,len=8"`
	Flag      string `json:"flag" validate:"required,min=1,max=500"`
}

// ModerationRequest carries an approve/reject verdict.
type ModerationRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
}

// ReportResponse is the serialized representation of a report.
type ReportResponse struct {
	ReportID   string     `json:"report_id"`
	PostID     string     `json:"post_id"`
	CommentID  string     `json:"comment_id,omitempty"`
	Flag       string     `json:"flag"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// NewReportResponse converts a model into a DTO.
func NewReportResponse(report models.Report) ReportResponse {
	commentID := ""
	if report.CommentID != nil {
		commentID = *report.CommentID
	}

	return ReportResponse{
		ReportID:   report.ReportID,
		PostID:     report.PostID,
		CommentID:  commentID,
		Flag:       report.Flag,
		Status:     report.Status,
		CreatedAt:  report.CreatedAt,
		ResolvedAt: report.ResolvedAt,
	}
}

// NewReportResponseSlice converts a slice of models into DTOs.
func NewReportResponseSlice(reports []models.Report) []ReportResponse {
	out := make([]ReportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, NewReportResponse(report))
	}
	return out
}
