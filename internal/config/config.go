package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName       = "SMSender"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultTokenTTL      = time.Hour
	defaultShutdownDelay = 10 * time.Second
	defaultStoreTimeout  = 5 * time.Second
	defaultSendTimeout   = 10 * time.Second
	defaultIdemTTL       = 24 * time.Hour
	defaultIssuePerMin   = 10
)

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName  string
	AppEnv   string
	Port     string
	LogLevel string

	DatabaseURL string
	RedisURL    string

	JWTSecret string
	TokenTTL  time.Duration

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	StoreTimeout    time.Duration
	ProviderTimeout time.Duration
	ShutdownPeriod  time.Duration
	IdempotencyTTL  time.Duration

	IssueRatePerMin int
}

// Load reads configuration values from the environment and populates a Config instance.
// Secrets are never defaulted: outside development the process refuses to start
// without a signing secret and provider credentials.
func Load() (Config, error) {
	cfg := Config{
		AppName:  getEnv("APP_NAME", defaultAppName),
		AppEnv:   strings.ToLower(getEnv("APP_ENV", defaultAppEnv)),
		Port:     getEnv("PORT", defaultPort),
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  defaultTokenTTL,

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_FROM_NUMBER"),

		StoreTimeout:    defaultStoreTimeout,
		ProviderTimeout: defaultSendTimeout,
		ShutdownPeriod:  defaultShutdownDelay,
		IdempotencyTTL:  defaultIdemTTL,
		IssueRatePerMin: defaultIssuePerMin,
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", cfg.TokenTTL); err != nil {
		return Config{}, err
	}
	if cfg.StoreTimeout, err = durationEnv("STORE_TIMEOUT", cfg.StoreTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ProviderTimeout, err = durationEnv("PROVIDER_TIMEOUT", cfg.ProviderTimeout); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownPeriod, err = durationEnv("SHUTDOWN_TIMEOUT", cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationEnv("IDEMPOTENCY_TTL", cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}

	if v := os.Getenv("JWT_RATE_LIMIT_PER_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid JWT_RATE_LIMIT_PER_MIN: %w", err)
		}
		cfg.IssueRatePerMin = n
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must be set")
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromNumber == "" {
			return Config{}, fmt.Errorf("TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and TWILIO_FROM_NUMBER must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// IsDev reports whether the service runs in a development environment where
// the Postgres/Redis/Twilio backends may be replaced with in-process stand-ins.
func (c Config) IsDev() bool {
	switch c.AppEnv {
	case "dev", "development", "local":
		return true
	default:
		return false
	}
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
