package model

import "time"

// TokenPurpose scopes a recovery token to a single flow. A token issued
// for one purpose is invalid for the other.
type TokenPurpose string

const (
	PurposePasswordReset TokenPurpose = "password-reset"
	PurposeEmailVerify   TokenPurpose = "email-verify"
)

func (p TokenPurpose) Valid() bool {
	switch p {
	case PurposePasswordReset, PurposeEmailVerify:
		return true
	}
	return false
}

// RecoveryToken is the persisted record of a single-use recovery
// credential. ConsumedAt transitions from nil to a timestamp exactly
// once; the transition is guarded by the store.
type RecoveryToken struct {
	Token      string       `json:"token"`
	Subject    string       `json:"subject"`
	Purpose    TokenPurpose `json:"purpose"`
	CreatedAt  time.Time    `json:"created_at"`
	ExpiresAt  time.Time    `json:"expires_at"`
	ConsumedAt *time.Time   `json:"consumed_at,omitempty"`
}
