package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Defaults()

	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, LogBackendPostgres, c.LogBackend)
	assert.Equal(t, "HS256", c.JWTAlgorithm)
	assert.Equal(t, 30*time.Minute, c.TokenTTL)
	assert.True(t, c.StrictRoles)
	assert.True(t, c.AuditAuthEvents)
	assert.False(t, c.TrustProxyHeaders)
	assert.Empty(t, c.JWTSecret)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CONFIG_FILE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_ALGORITHM", "HS512")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("STRICT_ROLES", "false")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("PORT", "9000")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, "HS512", c.JWTAlgorithm)
	assert.Equal(t, 5*time.Minute, c.TokenTTL)
	assert.False(t, c.StrictRoles)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, "9000", c.Port)
	assert.True(t, c.TrustProxyHeaders)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
port: "7070"
jwt_secret: from-file
token_ttl: 90s
log_backend: mongo
mongo_uri: mongodb://localhost:27017
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PORT", "7171")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", c.JWTSecret)
	assert.Equal(t, 90*time.Second, c.TokenTTL)
	assert.Equal(t, LogBackendMongo, c.LogBackend)
	assert.Equal(t, "7171", c.Port, "env must win over the file")
}

func TestLoad_BadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"unknown algorithm", func(c *Config) { c.JWTAlgorithm = "RS256" }, false},
		{"negative ttl", func(c *Config) { c.TokenTTL = -time.Second }, false},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, true},
		{"bcrypt cost too low", func(c *Config) { c.BcryptCost = 1 }, false},
		{"unknown backend", func(c *Config) { c.LogBackend = "sqlite" }, false},
		{"half bootstrap", func(c *Config) { c.BootstrapAdminUsername = "root" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			c.JWTSecret = "k"
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
