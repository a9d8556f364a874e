// Package config builds the process-wide settings once at startup. Values come
// from the environment (optionally seeded from a .env file) with defaults for
// everything but the signing secret.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds runtime settings for the API server and the useradd tool.
type Config struct {
	Port          string `mapstructure:"port"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	LogLevel      string `mapstructure:"log_level"`
	MetricsAddr   string `mapstructure:"metrics_addr"`

	StoreDriver      string        `mapstructure:"store_driver"`
	DatabaseURL      string        `mapstructure:"database_url"`
	PostgresUser     string        `mapstructure:"postgres_user"`
	PostgresPassword string        `mapstructure:"postgres_password"`
	PostgresDB       string        `mapstructure:"postgres_db"`
	PostgresHost     string        `mapstructure:"postgres_host"`
	PostgresPort     string        `mapstructure:"postgres_port"`
	DBMaxOpen        int           `mapstructure:"db_max_open"`
	DBMaxIdle        int           `mapstructure:"db_max_idle"`
	DBMaxLifetime    time.Duration `mapstructure:"db_max_lifetime"`
	DBQueryTimeout   time.Duration `mapstructure:"db_query_timeout"`

	JWTSecret     string `mapstructure:"jwt_secret"`
	BcryptCost    int    `mapstructure:"bcrypt_cost"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`

	StoragePath string   `mapstructure:"storage_path"`
	MaxUploadMB int64    `mapstructure:"max_upload_mb"`
	CORSOrigins []string `mapstructure:"cors_origins"`

	ReadHeaderTimeout time.Duration `mapstructure:"http_read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"http_read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"http_write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"http_idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]any{
	"port":                     "3000",
	"log_level":                "info",
	"store_driver":             StoreDriverPostgres,
	"postgres_host":            "localhost",
	"postgres_port":            "5432",
	"db_max_open":              25,
	"db_max_idle":              25,
	"db_max_lifetime":          "5m",
	"db_query_timeout":         "5s",
	"bcrypt_cost":              10,
	"storage_path":             "./storage",
	"max_upload_mb":            100,
	"cors_origins":             "*",
	"http_read_header_timeout": "10s",
	"http_read_timeout":        "5m",
	"http_write_timeout":       "5m",
	"http_idle_timeout":        "2m",
	"shutdown_timeout":         "5s",
}

// keys without a default still need binding so Unmarshal sees them.
var unbound = []string{
	"public_base_url", "metrics_addr", "database_url",
	"postgres_user", "postgres_password", "postgres_db",
	"jwt_secret", "admin_email", "admin_password",
}

// Load reads .env (if any) into the environment and then builds the Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the Config from the current environment only.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	for _, k := range unbound {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

// Addr is the listen address for the API server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// MaxUploadBytes is the request body cap for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// DSN returns DATABASE_URL, or a postgres URL composed from the POSTGRES_*
// settings when it is unset.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(c.PostgresHost, c.PostgresPort),
		Path:     "/" + c.PostgresDB,
		RawQuery: "sslmode=disable",
	}
	if c.PostgresUser != "" {
		u.User = url.UserPassword(c.PostgresUser, c.PostgresPassword)
	}
	return u.String()
}

// AllowedOrigins trims the configured CORS origins and drops empties.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
