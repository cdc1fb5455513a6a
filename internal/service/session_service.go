package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go-market-auth/internal/event"
	"go-market-auth/internal/identity"
	"go-market-auth/internal/model"
)

const SessionCookieName = "session"

type userReader interface {
	FindByID(ctx context.Context, id string) (model.User, error)
}

// SessionService exchanges identity assertions for time-bounded session
// artifacts and rebuilds a Session from an artifact on every request.
// It keeps no per-request state and caches nothing between calls.
type SessionService struct {
	provider   identity.Provider
	users      userReader
	bus        *event.InMemoryBus
	sessionTTL time.Duration
	secure     bool
}

func NewSessionService(provider identity.Provider, users userReader, bus *event.InMemoryBus, sessionTTL time.Duration, secure bool) *SessionService {
	return &SessionService{
		provider:   provider,
		users:      users,
		bus:        bus,
		sessionTTL: sessionTTL,
		secure:     secure,
	}
}

// Mint verifies the raw assertion with the identity provider, loads the
// account for the authoritative role at mint time and wraps everything
// into a signed artifact. The embedded role goes stale if the account's
// role changes later; it refreshes on the next mint.
func (s *SessionService) Mint(ctx context.Context, assertion string) (string, error) {
	assertion = strings.TrimSpace(assertion)
	if assertion == "" {
		return "", model.ErrInvalidCredential
	}

	claims, err := s.provider.VerifyAssertion(ctx, assertion)
	if err != nil {
		s.emit(event.TypeSessionRejected, "", "assertion rejected")
		return "", err
	}

	user, err := s.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.emit(event.TypeSessionRejected, claims.Subject, "unknown subject")
			return "", fmt.Errorf("%w: unknown subject", model.ErrInvalidCredential)
		}
		return "", fmt.Errorf("load account for mint: %w", err)
	}

	artifact, err := s.provider.MintArtifact(ctx, identity.Claims{
		Subject:       user.ID,
		Email:         user.Email,
		EmailVerified: user.EmailVerified,
		Role:          user.Role,
	}, s.sessionTTL)
	if err != nil {
		return "", err
	}

	s.emit(event.TypeSessionMinted, user.ID, "")
	return artifact, nil
}

// Verify rebuilds the per-request Session from an artifact, asking the
// provider for a revocation check so artifacts minted before the
// account's last credential change are rejected.
func (s *SessionService) Verify(ctx context.Context, artifact string) (model.Session, error) {
	artifact = strings.TrimSpace(artifact)
	if artifact == "" {
		return model.Session{}, model.ErrUnauthenticated
	}

	claims, err := s.provider.VerifyArtifact(ctx, artifact, true)
	if err != nil {
		return model.Session{}, err
	}

	return model.Session{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Role:          claims.Role,
		IssuedAt:      claims.IssuedAt,
		ExpiresAt:     claims.ExpiresAt,
	}, nil
}

// Cookie wraps a minted artifact in the session cookie.
func (s *SessionService) Cookie(artifact string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    artifact,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the client-held artifact. This is a client-side
// logout only; outstanding artifacts stay valid until natural expiry or
// a credential change bumps the account's revocation cutoff.
func (s *SessionService) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *SessionService) emit(t event.Type, subject string, detail string) {
	if s.bus != nil {
		s.bus.Emit(t, subject, detail)
	}
}
