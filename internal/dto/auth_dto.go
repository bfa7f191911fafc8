package dto

import "time"

// SendOTPRequest asks for a one-time code to be mailed to an address.
type SendOTPRequest struct {
	Username        string `json:"username" validate:"required,min=6,max=64,alphanumunderscore,containsletter"`
	Email           string `json:"email" validate:"required,email"`
	TOS             bool   `json:"tos" validate:"required,eq=true"`
	CaptchaResponse string `json:"captchaResponse" validate:"required"`
}

// SignInRequest exchanges a one-time code for a session.
type SignInRequest struct {
	OTP      string `json:"otp" validate:"required,len=6,numeric"`
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=1,max=64,alphanumunderscore,containsletter"`
}

// SendOTPResponse reports when a throttled caller may retry.
type SendOTPResponse struct {
	RetryAfter *time.Time `json:"retryAfter,omitempty"`
}

// SessionResponse is returned after a successful sign-in.
type SessionResponse struct {
	Role     string `json:"role"`
	Username string `json:"username"`
}
