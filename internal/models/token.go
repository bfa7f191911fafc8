package models

import "time"

// Session roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Token is a server-side session record keyed by an opaque token string.
// RefreshedAt moves forward on qualifying activity to implement sliding
// expiry; the row is deleted lazily once a lookup finds it expired.
type Token struct {
	Token       string    `gorm:"primaryKey;size:64" json:"token"`
	Role        string    `gorm:"size:8;not null;default:user" json:"role"`
	Username    string    `gorm:"size:64;not null" json:"username"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	RefreshedAt time.Time `gorm:"not null" json:"timestamp"`
}

// OTP holds the hashed one-time code most recently issued to an email
// address. At most one live row per email; reissue overwrites it.
type OTP struct {
	Email    string    `gorm:"primaryKey;size:255" json:"email"`
	Code     string    `gorm:"size:64;not null" json:"-"`
	IssuedAt time.Time `gorm:"not null" json:"timestamp"`
}
