package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/models"
	"github.com/stackit-forum/stackit-api/internal/observability"
	"github.com/stackit-forum/stackit-api/internal/repository"
)

// Moderation service sentinel errors.
var ErrReportNotFound = errors.New("report not found")

// ModerationService records reports against content and applies moderator
// verdicts.
type ModerationService interface {
	ReportContent(ctx context.Context, payload dto.ReportCreateRequest) (dto.ReportResponse, error)
	PendingReports(ctx context.Context) ([]dto.ReportResponse, error)
	ResolveReport(ctx context.Context, reportID, moderator string) (int64, error)
	ModeratePost(ctx context.Context, postID, action, moderator string) error
	ModerateComment(ctx context.Context, postID, commentID, action, moderator string) error
}

type moderationService struct {
	reports     repository.ReportRepository
	posts       repository.PostRepository
	comments    repository.CommentRepository
	securityLog repository.SecurityLogRepository
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewModerationService constructs a moderation service.
func NewModerationService(
	reports repository.ReportRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	securityLog repository.SecurityLogRepository,
	validate *validator.Validate,
	logger zerolog.Logger,
) ModerationService {
	return &moderationService{
		reports:     reports,
		posts:       posts,
		comments:    comments,
		securityLog: securityLog,
		validator:   validate,
		logger:      logger.With().Str("component", "moderation_service").Logger(),
		now:         time.Now,
	}
}

// ReportContent files one pending report. The id is `{target}_{millis}`;
// two reports on the same target in the same millisecond collide, which is
// an accepted limitation.
func (s *moderationService) ReportContent(ctx context.Context, payload dto.ReportCreateRequest) (dto.ReportResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReportResponse{}, err
	}

	target := payload.PostID
	var commentID *string
	if payload.CommentID != "" {
		target = payload.CommentID
		commentID = &payload.CommentID
	}

	report := models.Report{
		ReportID:  fmt.Sprintf("%s_%d", target, s.now().UnixMilli()),
		PostID:    payload.PostID,
		CommentID: commentID,
		Flag:      payload.Flag,
		Status:    models.ReportPending,
	}

	if err := s.reports.Create(ctx, &report); err != nil {
		return dto.ReportResponse{}, err
	}

	return dto.NewReportResponse(report), nil
}

func (s *moderationService) PendingReports(ctx context.Context) ([]dto.ReportResponse, error) {
	reports, err := s.reports.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewReportResponseSlice(reports), nil
}

// ResolveReport resolves every report filed against the same post as the
// named report, sharing a single resolution timestamp. Returns the number
// of reports closed.
func (s *moderationService) ResolveReport(ctx context.Context, reportID, moderator string) (int64, error) {
	report, err := s.reports.FindByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrReportNotFound
		}
		return 0, err
	}

	resolved, err := s.reports.ResolveAllForPost(ctx, report.PostID, s.now())
	if err != nil {
		return 0, err
	}

	observability.ReportsResolved().Inc()
	s.audit(ctx, fmt.Sprintf("Moderator %s resolved %d reports for post %s", moderator, resolved, report.PostID))

	return resolved, nil
}

func (s *moderationService) ModeratePost(ctx context.Context, postID, action, moderator string) error {
	status, err := verdictStatus(action)
	if err != nil {
		return err
	}

	if err := s.posts.UpdateModerationStatus(ctx, postID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}

	observability.ModerationDecisions().WithLabelValues("post", status).Inc()
	s.audit(ctx, fmt.Sprintf("Moderator %s marked post %s as %s", moderator, postID, status))
	return nil
}

// ModerateComment transitions a comment; the repository keeps the owning
// post's comment_count consistent when the verdict is a rejection.
func (s *moderationService) ModerateComment(ctx context.Context, postID, commentID, action, moderator string) error {
	status, err := verdictStatus(action)
	if err != nil {
		return err
	}

	if err := s.comments.SetModerationStatus(ctx, postID, commentID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	observability.ModerationDecisions().WithLabelValues("comment", status).Inc()
	s.audit(ctx, fmt.Sprintf("Moderator %s marked comment %s on post %s as %s", moderator, commentID, postID, status))
	return nil
}

func (s *moderationService) audit(ctx context.Context, detail string) {
	entry := models.SecurityLog{
		Type:   models.SecurityModerationAction,
		Detail: detail,
	}
	if err := s.securityLog.Create(ctx, &entry); err != nil {
		s.logger.Warn().Err(err).Msg("failed to write security log entry")
	}
}

func verdictStatus(action string) (string, error) {
	switch action {
	case "approve":
		return models.ModerationApproved, nil
	case "reject":
		return models.ModerationRejected, nil
	default:
		return "", fmt.Errorf("invalid moderation action %q", action)
	}
}
