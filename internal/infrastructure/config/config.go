package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	FS        FSConfig
	Shell     ShellConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// Global shares one bucket across all clients instead of one per IP
	Global bool `envconfig:"RATE_LIMIT_GLOBAL" default:"false"`
}

// FSConfig holds virtual filesystem settings.
type FSConfig struct {
	User     string `envconfig:"VFS_USER" default:"Durgas"`
	Hostname string `envconfig:"VFS_HOSTNAME" default:"webos"`
	SeedPath string `envconfig:"VFS_SEED_PATH"`
}

// ShellConfig holds terminal session settings.
type ShellConfig struct {
	CalcTimeout time.Duration `envconfig:"SHELL_CALC_TIMEOUT" default:"2s"`
	MaxHistory  int           `envconfig:"SHELL_MAX_HISTORY" default:"500"`
	MaxSessions int           `envconfig:"SHELL_MAX_SESSIONS" default:"64"`
}

// Load reads an optional .env file and then configuration from environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		FS: FSConfig{
			User:     "Durgas",
			Hostname: "webos",
		},
		Shell: ShellConfig{
			CalcTimeout: 2 * time.Second,
			MaxHistory:  500,
			MaxSessions: 64,
		},
	}
}

// Address returns the listen address for the HTTP server.
func (c ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Server,
		validation.Field(&c.Server.Port, validation.Required),
		validation.Field(&c.Server.ShutdownTimeout, validation.Min(time.Duration(0))),
	); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := validation.ValidateStruct(&c.Logging,
		validation.Field(&c.Logging.Level, validation.In("debug", "info", "warn", "error")),
	); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := validation.ValidateStruct(&c.RateLimit,
		validation.Field(&c.RateLimit.RequestsPerSecond, validation.Min(1)),
		validation.Field(&c.RateLimit.Burst, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	if err := validation.ValidateStruct(&c.FS,
		validation.Field(&c.FS.User, validation.Required),
		validation.Field(&c.FS.Hostname, validation.Required),
	); err != nil {
		return fmt.Errorf("fs: %w", err)
	}
	if err := validation.ValidateStruct(&c.Shell,
		validation.Field(&c.Shell.CalcTimeout, validation.Required),
		validation.Field(&c.Shell.MaxHistory, validation.Min(1)),
		validation.Field(&c.Shell.MaxSessions, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("shell: %w", err)
	}
	return nil
}
