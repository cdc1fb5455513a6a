// Package identity adapts the external identity provider. The provider
// is the system of record for raw credential verification; this package
// consumes its contract and never stores credentials itself.
package identity

import (
	"context"
	"time"

	"go-market-auth/internal/model"
)

// Claims is the verified identity payload extracted from an assertion
// or a session artifact.
type Claims struct {
	Subject       string
	Email         string
	EmailVerified bool
	Role          model.Role
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

// Provider mints and verifies signed identity material.
//
// VerifyAssertion fails with model.ErrInvalidCredential; VerifyArtifact
// fails with model.ErrUnauthenticated for anything malformed, expired,
// tampered or revoked.
type Provider interface {
	VerifyAssertion(ctx context.Context, raw string) (Claims, error)
	MintArtifact(ctx context.Context, claims Claims, ttl time.Duration) (string, error)
	VerifyArtifact(ctx context.Context, artifact string, checkRevocation bool) (Claims, error)
}

// RevocationChecker reports whether an artifact issued at issuedAt for
// subject has been invalidated by a later credential change. A nil
// return means the artifact is still acceptable.
type RevocationChecker func(ctx context.Context, subject string, issuedAt time.Time) error
