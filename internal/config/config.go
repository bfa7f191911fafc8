package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	SessionSecret    string
	SessionSalt      string
	SessionTTL       time.Duration
	CookieDomain     string
	ModeratorEmails  []string
	OTPTTL           time.Duration
	OTPCooldown      time.Duration
	SMTPHost         string
	SMTPPort         string
	SMTPUser         string
	SMTPPassword     string
	SMTPFrom         string
	CaptchaSecret    string
	CaptchaVerifyURL string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production hardening
// (secure cookies, scoped domain).
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// IsModerator reports whether the email belongs to the moderator allow-list.
func (c Config) IsModerator(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, moderator := range c.ModeratorEmails {
		if email == moderator {
			return true
		}
	}
	return false
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("STACKIT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "StackIt API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("session.ttl", "336h")
	v.SetDefault("otp.ttl", "10m")
	v.SetDefault("otp.cooldown", "60s")
	v.SetDefault("captcha.verify_url", "https://challenges.cloudflare.com/turnstile/v0/siteverify")

	sessionTTL, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	otpTTL, err := time.ParseDuration(v.GetString("otp.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid otp ttl: %w", err)
	}

	otpCooldown, err := time.ParseDuration(v.GetString("otp.cooldown"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid otp cooldown: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		SessionSecret:    v.GetString("session.secret"),
		SessionSalt:      v.GetString("session.salt"),
		SessionTTL:       sessionTTL,
		CookieDomain:     v.GetString("cookie.domain"),
		ModeratorEmails:  splitEmails(v.GetString("moderator.emails")),
		OTPTTL:           otpTTL,
		OTPCooldown:      otpCooldown,
		SMTPHost:         v.GetString("smtp.host"),
		SMTPPort:         v.GetString("smtp.port"),
		SMTPUser:         v.GetString("smtp.user"),
		SMTPPassword:     v.GetString("smtp.password"),
		SMTPFrom:         v.GetString("smtp.from"),
		CaptchaSecret:    v.GetString("captcha.secret"),
		CaptchaVerifyURL: v.GetString("captcha.verify_url"),
	}

	if cfg.SessionSecret == "" || cfg.SessionSalt == "" {
		return Config{}, fmt.Errorf("session secret and salt must be provided")
	}

	return cfg, nil
}

func splitEmails(raw string) []string {
	parts := strings.Split(raw, ",")
	emails := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			emails = append(emails, trimmed)
		}
	}
	return emails
}
