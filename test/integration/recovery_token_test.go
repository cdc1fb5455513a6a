//go:build integration

package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-market-auth/internal/model"
	"go-market-auth/internal/repository"
)

func storeToken(t *testing.T, repo *repository.RecoveryTokenRepository, subject string, purpose model.TokenPurpose, ttl time.Duration) model.RecoveryToken {
	t.Helper()

	now := time.Now().UTC()
	token := model.RecoveryToken{
		Token:     "itest-" + subject + "-" + string(purpose) + now.Format("150405.000000000"),
		Subject:   subject,
		Purpose:   purpose,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	require.NoError(t, repo.Store(context.Background(), token))
	return token
}

func TestConsumeSingleUse(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, model.RoleBuyer)
	repo := repository.NewRecoveryTokenRepository(db.Pool)

	token := storeToken(t, repo, user.ID, model.PurposePasswordReset, time.Hour)

	subject, err := repo.Consume(context.Background(), token.Token, model.PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)

	_, err = repo.Consume(context.Background(), token.Token, model.PurposePasswordReset)
	assert.True(t, errors.Is(err, model.ErrTokenConsumed))
}

func TestConsumeClassification(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, model.RoleBuyer)
	repo := repository.NewRecoveryTokenRepository(db.Pool)

	t.Run("absent token", func(t *testing.T) {
		_, err := repo.Consume(context.Background(), "never-stored", model.PurposePasswordReset)
		assert.True(t, errors.Is(err, model.ErrInvalidToken))
	})

	t.Run("purpose mismatch", func(t *testing.T) {
		token := storeToken(t, repo, user.ID, model.PurposeEmailVerify, time.Hour)
		_, err := repo.Consume(context.Background(), token.Token, model.PurposePasswordReset)
		assert.True(t, errors.Is(err, model.ErrInvalidToken))

		// The mismatch must not burn the token for its real purpose.
		subject, err := repo.Consume(context.Background(), token.Token, model.PurposeEmailVerify)
		require.NoError(t, err)
		assert.Equal(t, user.ID, subject)
	})

	t.Run("expired token", func(t *testing.T) {
		token := storeToken(t, repo, user.ID, model.PurposePasswordReset, -time.Minute)
		_, err := repo.Consume(context.Background(), token.Token, model.PurposePasswordReset)
		assert.True(t, errors.Is(err, model.ErrTokenExpired))
	})
}

// TestConsumeConcurrentSingleWinner drives the guarded UPDATE with many
// parallel consumers against a real database. Exactly one must win.
func TestConsumeConcurrentSingleWinner(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, model.RoleBuyer)
	repo := repository.NewRecoveryTokenRepository(db.Pool)

	token := storeToken(t, repo, user.ID, model.PurposePasswordReset, time.Hour)

	const racers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	start := make(chan struct{})

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := repo.Consume(context.Background(), token.Token, model.PurposePasswordReset); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}

	close(start)
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestCleanExpired(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, model.RoleBuyer)
	repo := repository.NewRecoveryTokenRepository(db.Pool)

	expired := storeToken(t, repo, user.ID, model.PurposePasswordReset, -time.Minute)
	live := storeToken(t, repo, user.ID, model.PurposePasswordReset, time.Hour)

	removed, err := repo.CleanExpired(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, removed, int64(1))

	_, err = repo.Consume(context.Background(), expired.Token, model.PurposePasswordReset)
	assert.True(t, errors.Is(err, model.ErrInvalidToken))

	subject, err := repo.Consume(context.Background(), live.Token, model.PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}
