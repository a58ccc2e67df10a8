package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/artpar/mingalaroo/internal/core/auth"
	"github.com/artpar/mingalaroo/internal/core/guest"
	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Links     LinksConfig     `mapstructure:"links"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	RSVP      RSVPConfig      `mapstructure:"rsvp"`
	DataDir   string          `mapstructure:"data_dir"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	PublicURL       string        `mapstructure:"public_url"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig holds organizer authentication configuration.
type AuthConfig struct {
	// Mode determines how the organizer identity is established.
	// "header" - trust X-User-ID from a fronting gateway (production)
	// "jwt"    - verify an HS256 bearer token
	// "dev"    - every request acts as DevOwner (local development)
	Mode string `mapstructure:"mode"`

	// SharedSecret is an optional secret to validate X-Gateway-Secret.
	SharedSecret string `mapstructure:"shared_secret"`

	// JWTSecret signs and verifies organizer tokens in jwt mode.
	JWTSecret string `mapstructure:"jwt_secret"`

	// TokenTTL is the lifetime of tokens minted with -issue-token.
	TokenTTL time.Duration `mapstructure:"token_ttl"`

	DevOwner string `mapstructure:"dev_owner"`
}

// LinksConfig controls generated invitation links.
type LinksConfig struct {
	Scheme string `mapstructure:"scheme"`
	Host   string `mapstructure:"host"`

	// FixedSegment, when set, is used as the path segment of every link
	// instead of the owner id.
	FixedSegment string `mapstructure:"fixed_segment"`
}

// Builder returns the link builder for this configuration.
func (c LinksConfig) Builder() guest.LinkBuilder {
	return guest.LinkBuilder{
		Scheme:       c.Scheme,
		Host:         c.Host,
		FixedSegment: c.FixedSegment,
	}
}

// DashboardConfig holds organizer dashboard settings.
type DashboardConfig struct {
	PageSize int `mapstructure:"page_size"`
	QRSize   int `mapstructure:"qr_size"`
}

// RSVPConfig throttles the public RSVP endpoints.
type RSVPConfig struct {
	RequestsPerWindow int           `mapstructure:"requests_per_window"`
	Window            time.Duration `mapstructure:"window"`
	Burst             int           `mapstructure:"burst"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("data_dir", "./data")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("auth.mode", "dev")
	v.SetDefault("auth.shared_secret", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "720h")
	v.SetDefault("auth.dev_owner", "dev-user")
	v.SetDefault("links.scheme", "https")
	v.SetDefault("links.host", "mingalaroo.com")
	v.SetDefault("links.fixed_segment", "")
	v.SetDefault("dashboard.page_size", 20)
	v.SetDefault("dashboard.qr_size", 256)
	v.SetDefault("rsvp.requests_per_window", 30)
	v.SetDefault("rsvp.window", "1m")
	v.SetDefault("rsvp.burst", 10)

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only a file that exists but cannot be parsed is fatal.
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("MINGALAROO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// The SQLite file lives in the data directory unless a DSN is given.
	if cfg.Database.DSN == "" && isSQLite(cfg.Database.Driver) {
		cfg.Database.DSN = filepath.Join(cfg.DataDir, "mingalaroo.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isSQLite(driver string) bool {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return true
	default:
		return false
	}
}

// Validate checks settings that would otherwise fail at request time.
func (c *Config) Validate() error {
	mode, err := auth.ParseMode(c.Auth.Mode)
	if err != nil {
		return err
	}
	if mode == auth.ModeJWT && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required in jwt mode")
	}
	if mode == auth.ModeDev && c.Auth.DevOwner == "" {
		return fmt.Errorf("auth.dev_owner is required in dev mode")
	}
	if c.Links.Host == "" {
		return fmt.Errorf("links.host is required")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
	}
	return nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
