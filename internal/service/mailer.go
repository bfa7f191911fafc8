package service

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stackit-forum/stackit-api/internal/config"
)

// SMTPMailer sends one-time codes over plain SMTP. When the SMTP settings
// are incomplete it stays disabled and logs instead of sending, which
// keeps local development working without a relay.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	from     string
	enabled  bool
	logger   zerolog.Logger
}

// NewSMTPMailer constructs the mailer from service configuration.
func NewSMTPMailer(cfg config.Config, logger zerolog.Logger) *SMTPMailer {
	enabled := cfg.SMTPHost != "" && cfg.SMTPPort != "" && cfg.SMTPUser != "" && cfg.SMTPPassword != "" && cfg.SMTPFrom != ""

	mailer := &SMTPMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.SMTPUser,
		password: cfg.SMTPPassword,
		from:     cfg.SMTPFrom,
		enabled:  enabled,
		logger:   logger.With().Str("component", "smtp_mailer").Logger(),
	}

	if !enabled {
		mailer.logger.Warn().Msg("smtp mailer disabled: missing smtp configuration")
	}

	return mailer
}

// SendOTP delivers the code asynchronously. Delivery failures are logged;
// the caller already persisted the code and must not block on the relay.
func (m *SMTPMailer) SendOTP(email, code string) {
	if !m.enabled {
		m.logger.Info().Str("email", email).Msg("smtp disabled, otp not delivered")
		return
	}

	go func() {
		auth := smtp.PlainAuth("", m.username, m.password, m.host)
		addr := fmt.Sprintf("%s:%s", m.host, m.port)

		body := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
		msg := []byte(strings.Join([]string{
			"To: " + email,
			"From: StackIt <" + m.from + ">",
			"Subject: Your StackIt verification code",
			"",
			body,
		}, "\r\n"))

		if err := smtp.SendMail(addr, auth, m.from, []string{email}, msg); err != nil {
			m.logger.Error().Err(err).Str("email", email).Msg("failed to send otp email")
			return
		}
		m.logger.Info().Str("email", email).Msg("otp email sent")
	}()
}
