package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Env: "development"},
		Postgres:  PostgresConfig{DSN: "postgres://localhost/storefront"},
		Auth:      AuthConfig{JWTSecret: defaultJWTSecret, BcryptCost: 10, CodeTTLMinutes: 10},
		RateLimit: RateLimitConfig{MaxRequests: 100, WindowMinutes: 15},
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://db/storefront")
	t.Setenv("OTP_TTL_MINUTES", "")
	t.Setenv("AUTH_RATE_LIMIT_MAX", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres://db/storefront", cfg.Postgres.DSN)
	assert.Equal(t, 10*time.Minute, cfg.Auth.CodeTTL())
	assert.Equal(t, 100, cfg.RateLimit.MaxRequests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window())
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTL())
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "zero")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("development defaults pass", func(t *testing.T) {
		require.NoError(t, validConfig().Validate())
	})

	t.Run("missing dsn", func(t *testing.T) {
		cfg := validConfig()
		cfg.Postgres.DSN = ""
		assert.ErrorContains(t, cfg.Validate(), "POSTGRES_DSN")
	})

	t.Run("production requires secret and smtp", func(t *testing.T) {
		cfg := validConfig()
		cfg.App.Env = "production"
		err := cfg.Validate()
		require.Error(t, err)
		assert.ErrorContains(t, err, "JWT_SECRET")
		assert.ErrorContains(t, err, "SMTP_HOST")
	})

	t.Run("half configured vapid", func(t *testing.T) {
		cfg := validConfig()
		cfg.Push.VAPIDPublicKey = "pub"
		assert.ErrorContains(t, cfg.Validate(), "VAPID_PRIVATE_KEY")
	})

	t.Run("bcrypt cost out of range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth.BcryptCost = 2
		assert.ErrorContains(t, cfg.Validate(), "BCRYPT_COST")
	})
}
