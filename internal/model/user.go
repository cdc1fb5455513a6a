package model

import "time"

// User is the account record held in the document store. PasswordHash
// and TokensValidAfter never leave the repository/service layer.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	EmailVerified    bool      `json:"email_verified"`
	TokensValidAfter time.Time `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// PublicUser is the wire shape returned by /me and the admin listing.
type PublicUser struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Role          Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		UID:           u.ID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		Role:          u.Role,
	}
}
