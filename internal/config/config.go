package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Log store backends.
const (
	LogBackendPostgres = "postgres"
	LogBackendMongo    = "mongo"
)

// Config holds all service configuration. It is built once at startup and
// treated as read-only afterwards; the JWT secret lives here and nowhere else.
type Config struct {
	Port        string `yaml:"port"`
	PostgresDSN string `yaml:"postgres_dsn"`
	LogBackend  string `yaml:"log_backend"`
	MongoURI    string `yaml:"mongo_uri"`
	MongoDB     string `yaml:"mongo_db"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	MinioEndpoint  string `yaml:"minio_endpoint"`
	MinioAccessKey string `yaml:"minio_access_key"`
	MinioSecretKey string `yaml:"minio_secret_key"`
	MinioBucket    string `yaml:"minio_bucket"`
	MinioUseSSL    bool   `yaml:"minio_use_ssl"`

	JWTSecret    string        `yaml:"jwt_secret"`
	JWTAlgorithm string        `yaml:"jwt_algorithm"`
	TokenTTL     time.Duration `yaml:"token_ttl"`
	BcryptCost   int           `yaml:"bcrypt_cost"`

	StrictRoles     bool     `yaml:"strict_roles"`
	AuditAuthEvents bool     `yaml:"audit_auth_events"`
	AllowedOrigins  []string `yaml:"allowed_origins"`

	// TrustProxyHeaders takes the client address from X-Forwarded-For or
	// X-Real-IP. Enable only behind a reverse proxy that sets them.
	TrustProxyHeaders bool `yaml:"trust_proxy_headers"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	BootstrapAdminUsername string `yaml:"bootstrap_admin_username"`
	BootstrapAdminPassword string `yaml:"bootstrap_admin_password"`
}

// Defaults returns the development configuration. The secret is empty on
// purpose so that Validate fails until one is supplied.
func Defaults() *Config {
	return &Config{
		Port:            "8080",
		LogBackend:      LogBackendPostgres,
		MongoDB:         "zerotrust",
		MinioBucket:     "activity-logs",
		JWTAlgorithm:    "HS256",
		TokenTTL:        30 * time.Minute,
		BcryptCost:      bcrypt.DefaultCost,
		StrictRoles:     true,
		AuditAuthEvents: true,
		AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getenv("PORT", c.Port)
	c.PostgresDSN = getenv("POSTGRES_DSN", c.PostgresDSN)
	c.LogBackend = getenv("LOG_BACKEND", c.LogBackend)
	c.MongoURI = getenv("MONGO_URI", c.MongoURI)
	c.MongoDB = getenv("MONGO_DB", c.MongoDB)
	c.RedisAddr = getenv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getenv("REDIS_PASSWORD", c.RedisPassword)
	c.MinioEndpoint = getenv("MINIO_ENDPOINT", c.MinioEndpoint)
	c.MinioAccessKey = getenv("MINIO_ACCESS_KEY", c.MinioAccessKey)
	c.MinioSecretKey = getenv("MINIO_SECRET_KEY", c.MinioSecretKey)
	c.MinioBucket = getenv("MINIO_BUCKET", c.MinioBucket)
	c.MinioUseSSL = getbool("MINIO_USE_SSL", c.MinioUseSSL)
	c.JWTSecret = getenv("JWT_SECRET", c.JWTSecret)
	c.JWTAlgorithm = getenv("JWT_ALGORITHM", c.JWTAlgorithm)
	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			c.TokenTTL = time.Duration(m) * time.Minute
		}
	}
	c.BcryptCost = getint("BCRYPT_COST", c.BcryptCost)
	c.StrictRoles = getbool("STRICT_ROLES", c.StrictRoles)
	c.AuditAuthEvents = getbool("AUDIT_AUTH_EVENTS", c.AuditAuthEvents)
	c.TrustProxyHeaders = getbool("TRUST_PROXY_HEADERS", c.TrustProxyHeaders)
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = parseCSV(v)
	}
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("LOG_FORMAT", c.LogFormat)
	c.BootstrapAdminUsername = getenv("BOOTSTRAP_ADMIN_USERNAME", c.BootstrapAdminUsername)
	c.BootstrapAdminPassword = getenv("BOOTSTRAP_ADMIN_PASSWORD", c.BootstrapAdminPassword)
}

// Validate reports the first setting that would leave the service unable to
// start safely.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported JWT_ALGORITHM %q", c.JWTAlgorithm)
	}
	if c.TokenTTL < 0 {
		return errors.New("token TTL must not be negative")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	switch c.LogBackend {
	case LogBackendPostgres, LogBackendMongo:
	default:
		return fmt.Errorf("unknown LOG_BACKEND %q", c.LogBackend)
	}
	if (c.BootstrapAdminUsername == "") != (c.BootstrapAdminPassword == "") {
		return errors.New("BOOTSTRAP_ADMIN_USERNAME and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getbool falls back when the variable is empty or not a valid boolean.
func getbool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func parseCSV(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
