package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultDatabaseURL     = "postgres://localhost:5432/webhook_db_placeholder"
	defaultPort            = "3000"
	defaultWebhookURL      = "http://localhost:5678/webhook/upload"
	defaultUploadsDir      = "./uploads"
	defaultPublicDir       = "./public"
	defaultWebhookTimeout  = "10s"
	defaultBreakerFailures = "5"
	defaultBreakerCooldown = "30s"
	defaultLogLevel        = "info"
)

type Config struct {
	AppEnv      string
	DatabaseURL string
	Port        int
	UploadsDir  string
	PublicDir   string

	WebhookURL             string
	WebhookTimeout         time.Duration
	WebhookBreakerFailures uint32
	WebhookBreakerCooldown time.Duration

	LogLevel string
	LogFile  string

	CORSAllowedOrigins []string
}

// Production reports whether the deployment mode requires encrypted
// database connections.
func (c *Config) Production() bool {
	return isProdLike(c.AppEnv)
}

func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load reads .env (if present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("NODE_ENV"))
	}
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.WebhookURL = strings.TrimSpace(getEnv("WEBHOOK_URL", defaultWebhookURL))
	cfg.UploadsDir = strings.TrimSpace(getEnv("UPLOADS_DIR", defaultUploadsDir))
	cfg.PublicDir = strings.TrimSpace(getEnv("PUBLIC_DIR", defaultPublicDir))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.LogFile = strings.TrimSpace(os.Getenv("LOG_FILE"))

	var err error
	cfg.Port, err = parseIntEnv("PORT", defaultPort)
	if err != nil {
		return nil, err
	}

	cfg.WebhookTimeout, err = parseDurationEnv("WEBHOOK_TIMEOUT", defaultWebhookTimeout)
	if err != nil {
		return nil, err
	}

	failures, err := parseIntEnv("WEBHOOK_BREAKER_FAILURES", defaultBreakerFailures)
	if err != nil {
		return nil, err
	}
	if failures < 0 {
		return nil, fmt.Errorf("WEBHOOK_BREAKER_FAILURES must be >= 0")
	}
	cfg.WebhookBreakerFailures = uint32(failures)

	cfg.WebhookBreakerCooldown, err = parseDurationEnv("WEBHOOK_BREAKER_COOLDOWN", defaultBreakerCooldown)
	if err != nil {
		return nil, err
	}

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.UploadsDir == "" {
		return fmt.Errorf("UPLOADS_DIR must not be empty")
	}
	if cfg.WebhookTimeout <= 0 {
		return fmt.Errorf("WEBHOOK_TIMEOUT must be > 0")
	}
	if cfg.WebhookBreakerCooldown <= 0 {
		return fmt.Errorf("WEBHOOK_BREAKER_COOLDOWN must be > 0")
	}
	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
