package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/stackit-forum/stackit-api/internal/config"
	"github.com/stackit-forum/stackit-api/internal/dto"
	"github.com/stackit-forum/stackit-api/internal/models"
	"github.com/stackit-forum/stackit-api/internal/observability"
	"github.com/stackit-forum/stackit-api/internal/repository"
	"github.com/stackit-forum/stackit-api/internal/session"
	"github.com/stackit-forum/stackit-api/internal/utils"
)

// Auth service sentinel errors.
var (
	ErrCaptchaFailed  = errors.New("captcha verification failed")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrOTPCooldown    = errors.New("an otp has already been sent to this email")
	ErrOTPNotFound    = errors.New("otp not found")
	ErrOTPExpired     = errors.New("otp expired")
	ErrOTPInvalid     = errors.New("invalid otp")
	ErrSessionInvalid = errors.New("invalid session")
)

// CaptchaVerifier checks a client's challenge response.
type CaptchaVerifier interface {
	Verify(ctx context.Context, response string) (bool, error)
}

// OTPMailer delivers a one-time code to an address.
type OTPMailer interface {
	SendOTP(email, code string)
}

// RateLimiter is the boolean throttling gate for OTP issuance.
type RateLimiter interface {
	IsLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// AuthUser is the request-scoped identity resolved from a session cookie.
type AuthUser struct {
	Token    string
	Role     string
	Username string
}

// AuthService owns the OTP and session token lifecycles.
type AuthService interface {
	SendOTP(ctx context.Context, payload dto.SendOTPRequest) (*time.Time, error)
	SignIn(ctx context.Context, payload dto.SignInRequest) (AuthUser, string, error)
	ResolveSession(ctx context.Context, cookieValue string) (AuthUser, error)
	RefreshToken(ctx context.Context, token string) error
	Logout(ctx context.Context, cookieValue string) error
}

type authService struct {
	cfg         config.Config
	otps        repository.OTPRepository
	tokens      repository.TokenRepository
	securityLog repository.SecurityLogRepository
	codec       *session.Codec
	captcha     CaptchaVerifier
	mailer      OTPMailer
	limiter     RateLimiter
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService constructs the auth service.
func NewAuthService(
	cfg config.Config,
	otps repository.OTPRepository,
	tokens repository.TokenRepository,
	securityLog repository.SecurityLogRepository,
	codec *session.Codec,
	captcha CaptchaVerifier,
	mailer OTPMailer,
	limiter RateLimiter,
	validate *validator.Validate,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		cfg:         cfg,
		otps:        otps,
		tokens:      tokens,
		securityLog: securityLog,
		codec:       codec,
		captcha:     captcha,
		mailer:      mailer,
		limiter:     limiter,
		validator:   validate,
		logger:      logger.With().Str("component", "auth_service").Logger(),
		now:         time.Now,
	}
}

// SendOTP issues a fresh 6-digit code, subject to captcha, the global
// issuance limit, and a per-email cooldown. On cooldown the returned time
// tells the caller when a retry becomes valid.
func (s *authService) SendOTP(ctx context.Context, payload dto.SendOTPRequest) (*time.Time, error) {
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if err := s.validator.Struct(payload); err != nil {
		return nil, err
	}

	ok, err := s.captcha.Verify(ctx, payload.CaptchaResponse)
	if err != nil || !ok {
		return nil, ErrCaptchaFailed
	}

	limited, err := s.limiter.IsLimited(ctx, "otp:issue", 1, time.Minute)
	if err != nil {
		s.logger.Warn().Err(err).Msg("rate limiter unavailable")
	} else if limited {
		return nil, ErrRateLimited
	}

	existing, err := s.otps.FindByEmail(ctx, payload.Email)
	if err == nil {
		readyAt := existing.IssuedAt.Add(s.cfg.OTPCooldown)
		if s.now().Before(readyAt) {
			return &readyAt, ErrOTPCooldown
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	code := utils.NewOTPCode()
	otp := models.OTP{
		Email:    payload.Email,
		Code:     utils.HashOTP(code),
		IssuedAt: s.now(),
	}
	if err := s.otps.Upsert(ctx, &otp); err != nil {
		return nil, err
	}

	s.mailer.SendOTP(payload.Email, code)
	observability.OTPIssued().Inc()
	s.logger.Info().Str("email", payload.Email).Msg("otp issued")

	return nil, nil
}

// SignIn exchanges a valid code for a session token and its encrypted
// cookie value. Admin role comes from the moderator allow-list. The OTP
// row is left in place after a successful exchange; it expires on its own.
func (s *authService) SignIn(ctx context.Context, payload dto.SignInRequest) (AuthUser, string, error) {
	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if err := s.validator.Struct(payload); err != nil {
		return AuthUser{}, "", err
	}

	otp, err := s.otps.FindByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthUser{}, "", ErrOTPNotFound
		}
		return AuthUser{}, "", err
	}

	if s.now().After(otp.IssuedAt.Add(s.cfg.OTPTTL)) {
		return AuthUser{}, "", ErrOTPExpired
	}

	hashed := utils.HashOTP(payload.OTP)
	if subtle.ConstantTimeCompare([]byte(hashed), []byte(otp.Code)) != 1 {
		return AuthUser{}, "", ErrOTPInvalid
	}

	role := models.RoleUser
	if s.cfg.IsModerator(payload.Email) {
		role = models.RoleAdmin
	}

	token := models.Token{
		Token:       utils.NewSessionToken(),
		Role:        role,
		Username:    payload.Username,
		Email:       payload.Email,
		RefreshedAt: s.now(),
	}
	if err := s.tokens.Create(ctx, &token); err != nil {
		return AuthUser{}, "", err
	}

	if role == models.RoleAdmin {
		entry := models.SecurityLog{
			Type:   models.SecurityAdminLogin,
			Detail: "Admin " + strings.Split(payload.Email, ".")[0] + " logged in",
		}
		if err := s.securityLog.Create(ctx, &entry); err != nil {
			s.logger.Warn().Err(err).Msg("failed to write admin login audit entry")
		}
	}

	cookie, err := s.codec.Encrypt(session.Payload{Token: token.Token, Role: role})
	if err != nil {
		return AuthUser{}, "", err
	}

	return AuthUser{Token: token.Token, Role: role, Username: token.Username}, cookie, nil
}

// ResolveSession decrypts the cookie, cross-checks the stored token, and
// enforces sliding expiry. An expired or inconsistent token is deleted
// lazily here; there is no background sweep.
func (s *authService) ResolveSession(ctx context.Context, cookieValue string) (AuthUser, error) {
	payload, err := s.codec.Decrypt(cookieValue)
	if err != nil || payload.Token == "" || payload.Role == "" {
		return AuthUser{}, ErrSessionInvalid
	}

	record, err := s.tokens.FindByToken(ctx, payload.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthUser{}, ErrSessionInvalid
		}
		return AuthUser{}, err
	}

	if record.Role != payload.Role {
		s.deleteQuietly(ctx, payload.Token)
		return AuthUser{}, ErrSessionInvalid
	}

	if s.now().After(record.RefreshedAt.Add(s.cfg.SessionTTL)) {
		s.deleteQuietly(ctx, payload.Token)
		return AuthUser{}, ErrSessionInvalid
	}

	return AuthUser{Token: record.Token, Role: record.Role, Username: record.Username}, nil
}

// RefreshToken advances the sliding-expiry anchor.
func (s *authService) RefreshToken(ctx context.Context, token string) error {
	return s.tokens.Refresh(ctx, token, s.now())
}

func (s *authService) Logout(ctx context.Context, cookieValue string) error {
	payload, err := s.codec.Decrypt(cookieValue)
	if err != nil || payload.Token == "" {
		return ErrSessionInvalid
	}
	return s.tokens.Delete(ctx, payload.Token)
}

func (s *authService) deleteQuietly(ctx context.Context, token string) {
	if err := s.tokens.Delete(ctx, token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to delete stale token")
	}
}
