package model

import "time"

// Session is the per-request view of a verified session artifact. It is
// rebuilt from the artifact on every request and never persisted.
type Session struct {
	Subject       string    `json:"uid"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Role          Role      `json:"role"`
	IssuedAt      time.Time `json:"issued_at"`
	ExpiresAt     time.Time `json:"expires_at"`
}
