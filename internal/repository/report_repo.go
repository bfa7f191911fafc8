package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/models"
)

// ReportRepository handles persistence for moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	FindByID(ctx context.Context, reportID string) (models.Report, error)
	ListPending(ctx context.Context) ([]models.Report, error)
	ResolveAllForPost(ctx context.Context, postID string, at time.Time) (int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository constructs a GORM-backed repository.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, reportID string) (models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).
		First(&report, "report_id = ?", reportID).Error; err != nil {
		return models.Report{}, err
	}
	return report, nil
}

func (r *reportRepository) ListPending(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.ReportPending).
		Order("created_at DESC").
		Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

// ResolveAllForPost resolves every report targeting the post with one
// shared resolution time. Resolving a single report clears the whole
// post's queue.
func (r *reportRepository) ResolveAllForPost(ctx context.Context, postID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Report{}).
		Where("post_id = ? AND status = ?", postID, models.ReportPending).
		Updates(map[string]interface{}{
			"status":      models.ReportResolved,
			"resolved_at": at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
