package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-market-auth/internal/model"
)

// RecoveryTokenRepository persists single-use recovery tokens. The
// consumed_at transition happens in exactly one place, the conditional
// UPDATE in Consume, so two racing consumers can never both win.
type RecoveryTokenRepository struct {
	pool *pgxpool.Pool
}

func NewRecoveryTokenRepository(pool *pgxpool.Pool) *RecoveryTokenRepository {
	return &RecoveryTokenRepository{pool: pool}
}

func (r *RecoveryTokenRepository) Store(ctx context.Context, token model.RecoveryToken) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO recovery_tokens (token, subject, purpose, created_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		token.Token, token.Subject, token.Purpose, token.CreatedAt, token.ExpiresAt)
	if err != nil {
		return fmt.Errorf("store recovery token: %w", err)
	}
	return nil
}

// Consume atomically marks the token used and returns its subject. The
// guarded UPDATE is the compare-and-set: it only matches an unconsumed,
// unexpired row with the right purpose. When no row matches, a
// follow-up read classifies the failure for logging and tests; callers
// surface all classes as one generic invalid-token answer.
func (r *RecoveryTokenRepository) Consume(ctx context.Context, token string, purpose model.TokenPurpose) (string, error) {
	now := time.Now().UTC()

	var subject string
	err := r.pool.QueryRow(ctx,
		`UPDATE recovery_tokens
		 SET consumed_at = $3
		 WHERE token = $1 AND purpose = $2 AND consumed_at IS NULL AND expires_at > $3
		 RETURNING subject`,
		token, purpose, now).Scan(&subject)

	if err == nil {
		return subject, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("consume recovery token: %w", err)
	}

	return "", r.classifyFailure(ctx, token, purpose, now)
}

func (r *RecoveryTokenRepository) classifyFailure(ctx context.Context, token string, purpose model.TokenPurpose, now time.Time) error {
	var (
		storedPurpose model.TokenPurpose
		expiresAt     time.Time
		consumedAt    *time.Time
	)
	err := r.pool.QueryRow(ctx,
		`SELECT purpose, expires_at, consumed_at FROM recovery_tokens WHERE token = $1`,
		token).Scan(&storedPurpose, &expiresAt, &consumedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("classify recovery token: %w", err)
	}

	switch {
	case storedPurpose != purpose:
		return model.ErrInvalidToken
	case consumedAt != nil:
		return model.ErrTokenConsumed
	case !expiresAt.After(now):
		return model.ErrTokenExpired
	default:
		// The CAS lost to a concurrent consume that committed between
		// our UPDATE and this read.
		return model.ErrTokenConsumed
	}
}

func (r *RecoveryTokenRepository) CleanExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM recovery_tokens WHERE expires_at <= now() OR consumed_at IS NOT NULL`)
	if err != nil {
		return 0, fmt.Errorf("clean expired recovery tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
