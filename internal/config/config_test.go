package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Environment:         "development",
		ServerPort:          "8080",
		DatabaseURL:         "postgres://localhost:5432/market",
		IdentitySecret:      "test-secret",
		SessionTTL:          120 * time.Hour,
		ResetTokenTTL:       time.Hour,
		VerifyTokenTTL:      24 * time.Hour,
		SensitiveRateMax:    5,
		SensitiveRateWindow: time.Minute,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.IdentitySecret = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.DatabaseURL = "  "
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.SensitiveRateMax = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.ResetTokenTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("IDENTITY_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/market")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SENSITIVE_RATE_MAX", "")
	t.Setenv("SENSITIVE_RATE_WINDOW", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5, cfg.SensitiveRateMax)
	assert.Equal(t, time.Minute, cfg.SensitiveRateWindow)
	assert.Equal(t, 120*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.Production())
}

func TestProduction(t *testing.T) {
	cfg := validConfig()
	assert.False(t, cfg.Production())

	cfg.Environment = "Production"
	assert.True(t, cfg.Production())
}
