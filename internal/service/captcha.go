package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stackit-forum/stackit-api/internal/config"
)

// HTTPCaptchaVerifier validates challenge responses against a remote
// verification endpoint (Turnstile-compatible form API).
type HTTPCaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    zerolog.Logger
}

// NewHTTPCaptchaVerifier constructs the verifier from service configuration.
func NewHTTPCaptchaVerifier(cfg config.Config, logger zerolog.Logger) *HTTPCaptchaVerifier {
	return &HTTPCaptchaVerifier{
		secret:    cfg.CaptchaSecret,
		verifyURL: cfg.CaptchaVerifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger.With().Str("component", "captcha_verifier").Logger(),
	}
}

// Verify posts the client response to the verification endpoint. When no
// secret is configured the check is skipped, which keeps local
// development working without a captcha account.
func (v *HTTPCaptchaVerifier) Verify(ctx context.Context, response string) (bool, error) {
	if v.secret == "" {
		return true, nil
	}
	if strings.TrimSpace(response) == "" {
		return false, nil
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", response)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		v.logger.Warn().Err(err).Msg("captcha verification request failed")
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}

	return result.Success, nil
}
