package config

import (
	"ctchen222/task-manager/internal/db"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AUTH_TRUST_USER_HEADER", "")
	t.Setenv("MAX_BODY_BYTES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, db.DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "./tasks.db", cfg.DatabaseURL)
	assert.Equal(t, int64(1<<20), cfg.MaxBodyBytes)
	assert.True(t, cfg.TrustUserHeader)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("DB_DRIVER", "PGX")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/tasks")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("AUTH_TRUST_USER_HEADER", "false")
	t.Setenv("AUTH_RATE_WINDOW", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, db.DriverPgx, cfg.DBDriver)
	assert.False(t, cfg.TrustUserHeader)
	assert.True(t, cfg.TokensEnabled())
	assert.Equal(t, 30*time.Second, cfg.AuthRateWindow)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unknown driver", "DB_DRIVER", "mysql"},
		{"bad duration", "TOKEN_TTL", "forever"},
		{"bad int", "MAX_BODY_BYTES", "big"},
		{"non-positive body limit", "MAX_BODY_BYTES", "0"},
		{"bad bool", "AUTH_TRUST_USER_HEADER", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_HeaderTrustRequiresSecretWhenDisabled(t *testing.T) {
	cfg := &Config{
		DBDriver:      db.DriverSQLite,
		DatabaseURL:   ":memory:",
		MaxBodyBytes:  1,
		AuthRateLimit: 1,
	}
	assert.Error(t, cfg.Validate())

	cfg.JWTSecret = "x"
	assert.NoError(t, cfg.Validate())
}
