package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stackit-forum/stackit-api/internal/models"
)

// TokenRepository persists session tokens.
type TokenRepository interface {
	Create(ctx context.Context, token *models.Token) error
	FindByToken(ctx context.Context, token string) (models.Token, error)
	Refresh(ctx context.Context, token string, at time.Time) error
	Delete(ctx context.Context, token string) error
	ListAll(ctx context.Context) ([]models.Token, error)
}

// OTPRepository persists one-time codes, at most one live row per email.
type OTPRepository interface {
	Upsert(ctx context.Context, otp *models.OTP) error
	FindByEmail(ctx context.Context, email string) (models.OTP, error)
	Delete(ctx context.Context, email string) error
}

// SecurityLogRepository appends audit entries for privileged events.
type SecurityLogRepository interface {
	Create(ctx context.Context, entry *models.SecurityLog) error
}

type tokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository constructs a GORM-backed repository.
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *models.Token) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *tokenRepository) FindByToken(ctx context.Context, token string) (models.Token, error) {
	var record models.Token
	if err := r.db.WithContext(ctx).
		First(&record, "token = ?", token).Error; err != nil {
		return models.Token{}, err
	}
	return record, nil
}

// Refresh moves the sliding-expiry anchor forward on qualifying activity.
func (r *tokenRepository) Refresh(ctx context.Context, token string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Token{}).
		Where("token = ?", token).
		UpdateColumn("refreshed_at", at).
		Error
}

func (r *tokenRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Delete(&models.Token{}, "token = ?", token).Error
}

func (r *tokenRepository) ListAll(ctx context.Context) ([]models.Token, error) {
	var tokens []models.Token
	if err := r.db.WithContext(ctx).Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

type otpRepository struct {
	db *gorm.DB
}

// NewOTPRepository constructs a GORM-backed repository.
func NewOTPRepository(db *gorm.DB) OTPRepository {
	return &otpRepository{db: db}
}

// Upsert overwrites any prior code for the email, so a reissue supersedes
// the previous one instead of accumulating rows.
func (r *otpRepository) Upsert(ctx context.Context, otp *models.OTP) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"code", "issued_at"}),
		}).
		Create(otp).Error
}

func (r *otpRepository) FindByEmail(ctx context.Context, email string) (models.OTP, error) {
	var otp models.OTP
	if err := r.db.WithContext(ctx).
		First(&otp, "email = ?", email).Error; err != nil {
		return models.OTP{}, err
	}
	return otp, nil
}

func (r *otpRepository) Delete(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).Delete(&models.OTP{}, "email = ?", email).Error
}

type securityLogRepository struct {
	db *gorm.DB
}

// NewSecurityLogRepository constructs a GORM-backed repository.
func NewSecurityLogRepository(db *gorm.DB) SecurityLogRepository {
	return &securityLogRepository{db: db}
}

func (r *securityLogRepository) Create(ctx context.Context, entry *models.SecurityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}
