//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"go-market-auth/internal/database"
	"go-market-auth/internal/model"
	"go-market-auth/internal/repository"
)

// newTestDB connects to the database named by TEST_DATABASE_URL and
// guarantees the schema. Tests that need Postgres skip when the
// variable is unset so the suite stays runnable on a bare machine.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.New(ctx, url, 10, 2)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, db.EnsureSchema(ctx))
	return db
}

// createTestUser inserts a throwaway user and removes it when the test
// finishes, tokens cascading with it.
func createTestUser(t *testing.T, db *database.DB, role model.Role) model.User {
	t.Helper()

	now := time.Now().UTC()
	user := model.User{
		ID:               uuid.NewString(),
		Email:            uuid.NewString() + "@integration.test",
		PasswordHash:     "$2a$12$integrationplaceholderhashvalue0000000000000000000000",
		Role:             role,
		TokensValidAfter: time.Unix(0, 0).UTC(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	users := repository.NewUserRepository(db.Pool)
	require.NoError(t, users.Create(context.Background(), user))

	t.Cleanup(func() {
		_, _ = db.Pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, user.ID)
	})
	return user
}
