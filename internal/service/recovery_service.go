package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"go-market-auth/internal/event"
	"go-market-auth/internal/model"
)

const minPasswordLength = 8

type userAccountStore interface {
	FindByID(ctx context.Context, id string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	UpdatePassword(ctx context.Context, userID string, passwordHash string) error
	SetEmailVerified(ctx context.Context, userID string) error
}

type tokenStore interface {
	Store(ctx context.Context, token model.RecoveryToken) error
	Consume(ctx context.Context, token string, purpose model.TokenPurpose) (string, error)
}

// RecoveryService runs the single-use token lifecycle for password
// reset and email verification.
type RecoveryService struct {
	users     userAccountStore
	tokens    tokenStore
	mailer    Mailer
	bus       *event.InMemoryBus
	resetTTL  time.Duration
	verifyTTL time.Duration
}

func NewRecoveryService(users userAccountStore, tokens tokenStore, mailer Mailer, bus *event.InMemoryBus, resetTTL time.Duration, verifyTTL time.Duration) *RecoveryService {
	return &RecoveryService{
		users:     users,
		tokens:    tokens,
		mailer:    mailer,
		bus:       bus,
		resetTTL:  resetTTL,
		verifyTTL: verifyTTL,
	}
}

// RequestPasswordReset issues a reset token for the account behind
// email, if one exists. An unknown address is not an error and causes
// no visible side effect, so the HTTP answer is identical either way.
func (s *RecoveryService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up account for reset: %w", err)
	}

	return s.issue(ctx, user, model.PurposePasswordReset, s.resetTTL)
}

// RequestEmailVerification issues a verification token for a known
// subject. Unlike the reset flow the caller is authenticated, so an
// unknown subject is an error.
func (s *RecoveryService) RequestEmailVerification(ctx context.Context, subject string) error {
	user, err := s.users.FindByID(ctx, subject)
	if err != nil {
		return err
	}

	return s.issue(ctx, user, model.PurposeEmailVerify, s.verifyTTL)
}

// ResetPassword consumes the token and installs the new password. The
// consume is the store's compare-and-set; a concurrent caller on the
// same token loses with ErrTokenConsumed and nothing else happens.
func (s *RecoveryService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", model.ErrInvalidInput, minPasswordLength)
	}

	subject, err := s.consume(ctx, token, model.PurposePasswordReset)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), 12)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// UpdatePassword also bumps tokens_valid_after, revoking every
	// session artifact minted before this reset.
	if err := s.users.UpdatePassword(ctx, subject, string(hash)); err != nil {
		return err
	}

	s.emit(event.TypeTokenConsumed, subject, string(model.PurposePasswordReset))
	return nil
}

// VerifyEmail consumes the token and marks the account's address
// verified, returning the subject it belonged to.
func (s *RecoveryService) VerifyEmail(ctx context.Context, token string) (string, error) {
	subject, err := s.consume(ctx, token, model.PurposeEmailVerify)
	if err != nil {
		return "", err
	}

	if err := s.users.SetEmailVerified(ctx, subject); err != nil {
		return "", err
	}

	s.emit(event.TypeTokenConsumed, subject, string(model.PurposeEmailVerify))
	return subject, nil
}

func (s *RecoveryService) issue(ctx context.Context, user model.User, purpose model.TokenPurpose, ttl time.Duration) error {
	raw, err := generateToken()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	record := model.RecoveryToken{
		Token:     raw,
		Subject:   user.ID,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}

	if err := s.tokens.Store(ctx, record); err != nil {
		return fmt.Errorf("persist recovery token: %w", err)
	}

	s.emit(event.TypeTokenIssued, user.ID, string(purpose))

	if err := s.mailer.SendRecoveryToken(ctx, user.Email, purpose, raw); err != nil {
		return fmt.Errorf("dispatch recovery token: %w", err)
	}

	return nil
}

func (s *RecoveryService) consume(ctx context.Context, token string, purpose model.TokenPurpose) (string, error) {
	if token == "" {
		return "", model.ErrInvalidToken
	}

	subject, err := s.tokens.Consume(ctx, token, purpose)
	if err != nil {
		s.emit(event.TypeTokenRejected, "", string(purpose))
		return "", err
	}

	return subject, nil
}

func (s *RecoveryService) emit(t event.Type, subject string, detail string) {
	if s.bus != nil {
		s.bus.Emit(t, subject, detail)
	}
}

// generateToken returns a 256-bit random opaque string.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate recovery token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
