package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment        string
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	IdentitySecret string
	SessionTTL     time.Duration

	ResetTokenTTL  time.Duration
	VerifyTokenTTL time.Duration

	CORSOrigins []string

	// Fixed-window limiter for the sensitive endpoints.
	SensitiveRateMax    int
	SensitiveRateWindow time.Duration
	// Token-bucket limiter for everything else, requests per minute.
	GeneralRateRPM int
	// When set, the sensitive limiter runs against Redis so multiple
	// instances share one counter.
	RedisAddr string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:        getEnv("ENVIRONMENT", "development"),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 15*time.Second),

		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 2)),

		IdentitySecret: strings.TrimSpace(os.Getenv("IDENTITY_SECRET")),
		SessionTTL:     getDuration("SESSION_TTL", 120*time.Hour),

		ResetTokenTTL:  getDuration("RESET_TOKEN_TTL", time.Hour),
		VerifyTokenTTL: getDuration("VERIFY_TOKEN_TTL", 24*time.Hour),

		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "*")),

		SensitiveRateMax:    getInt("SENSITIVE_RATE_MAX", 5),
		SensitiveRateWindow: getDuration("SENSITIVE_RATE_WINDOW", time.Minute),
		GeneralRateRPM:      getInt("GENERAL_RATE_RPM", 100),
		RedisAddr:           strings.TrimSpace(os.Getenv("REDIS_ADDR")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.IdentitySecret) == "" {
		return fmt.Errorf("IDENTITY_SECRET is required")
	}

	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.SensitiveRateMax <= 0 {
		return fmt.Errorf("SENSITIVE_RATE_MAX must be positive")
	}

	if c.SensitiveRateWindow <= 0 {
		return fmt.Errorf("SENSITIVE_RATE_WINDOW must be positive")
	}

	if c.ResetTokenTTL <= 0 || c.VerifyTokenTTL <= 0 {
		return fmt.Errorf("token TTLs must be positive")
	}

	return nil
}

// Production reports whether session cookies should be marked Secure.
func (c *Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
