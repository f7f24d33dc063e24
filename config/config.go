package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const namespace = "TASKTIME"

// Config is the application configuration, read from the environment
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	DBPath    string `envconfig:"DB_PATH" default:"tasktime.db"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	UseHTTPS  bool   `envconfig:"USE_HTTPS" default:"false"`

	// Empty means allow all origins
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS"`

	// Maximum number of aggregate queries run in parallel for summaries
	SummaryConcurrency int `envconfig:"SUMMARY_CONCURRENCY" default:"4"`

	OIDC OIDCConfig `envconfig:"OIDC"`
}

// OIDCConfig holds OpenID Connect login settings
type OIDCConfig struct {
	Domain       string `envconfig:"DOMAIN"`
	ClientID     string `envconfig:"CLIENT_ID"`
	ClientSecret string `envconfig:"CLIENT_SECRET"`
	CallbackURL  string `envconfig:"CALLBACK_URL"`
}

// Enabled reports whether an OIDC provider is configured
func (c OIDCConfig) Enabled() bool {
	return c.Domain != ""
}

// Load reads the given .env files, if present, and then the environment
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load the env files: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(namespace, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded configuration
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("invalid DB_PATH: must not be empty")
	}

	if c.SummaryConcurrency < 1 || c.SummaryConcurrency > 64 {
		return fmt.Errorf("invalid SUMMARY_CONCURRENCY: %d (must be between 1 and 64)", c.SummaryConcurrency)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %q (must be text or json)", c.LogFormat)
	}

	if c.OIDC.Enabled() {
		if c.OIDC.ClientID == "" || c.OIDC.ClientSecret == "" || c.OIDC.CallbackURL == "" {
			return errors.New("OIDC_DOMAIN is set but OIDC_CLIENT_ID, OIDC_CLIENT_SECRET or OIDC_CALLBACK_URL is missing")
		}
	}

	return nil
}

// SlogLevel returns the configured log level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
