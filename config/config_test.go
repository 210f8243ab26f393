package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_FileWithEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
postgres:
  dsn: postgres://file/db
http:
  address: ":9000"
auth:
  mode: hmac
  jwt_secret: from-file
  jwt_ttl: 2h
ladder:
  async_reprojection: true
  defaults:
    mu: 1500
    sigma: 500
`)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/db", cfg.Postgres.DSN)
	assert.Equal(t, ":9000", cfg.HTTP.Address)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, AuthModeHMAC, cfg.Auth.Mode)
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 2*time.Hour, cfg.Auth.JWTTTL)
	assert.True(t, cfg.Ladder.AsyncReprojection)
	assert.Equal(t, 1500.0, cfg.Ladder.Defaults.Mu)
	assert.Equal(t, 500.0, cfg.Ladder.Defaults.Sigma)
	// Untouched keys keep their defaults.
	assert.Equal(t, 0.10, cfg.Ladder.Defaults.DrawProbability)
	assert.Equal(t, 42, cfg.Ladder.MatchPageSize)
}

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("GOOGLE_CLIENT_IDS", "one.apps.googleusercontent.com,two.apps.googleusercontent.com")
	t.Setenv("HTTP_RATE_LIMIT", "2.5")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, AuthModeGoogle, cfg.Auth.Mode)
	assert.Len(t, cfg.Auth.GoogleClientIDs, 2)
	assert.Equal(t, 2.5, cfg.HTTP.RateLimit)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
}

func TestLoadConfig_InvalidEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("JWT_TTL", "forever")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "JWT_TTL")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid google", mutate: func(c *Config) {}},
		{name: "missing dsn", mutate: func(c *Config) { c.Postgres.DSN = "" }, wantErr: "postgres.dsn"},
		{name: "google without client ids", mutate: func(c *Config) { c.Auth.GoogleClientIDs = nil }, wantErr: "google_client_ids"},
		{name: "hmac without secret", mutate: func(c *Config) { c.Auth.Mode = AuthModeHMAC }, wantErr: "jwt_secret"},
		{name: "unknown mode", mutate: func(c *Config) { c.Auth.Mode = "saml" }, wantErr: "unknown auth.mode"},
		{name: "zero page size", mutate: func(c *Config) { c.Ladder.MatchPageSize = 0 }, wantErr: "match_page_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Postgres.DSN = "postgres://localhost/db"
			cfg.Auth.GoogleClientIDs = []string{"client"}
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
