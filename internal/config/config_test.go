package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "development")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.TokenTTL != time.Hour {
		t.Fatalf("expected 1h token ttl, got %v", cfg.TokenTTL)
	}
	if cfg.StoreTimeout != 5*time.Second || cfg.ProviderTimeout != 10*time.Second {
		t.Fatalf("unexpected timeouts %+v", cfg)
	}
	if !cfg.IsDev() {
		t.Fatalf("expected dev environment")
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when JWT_SECRET unset")
	}
}

func TestLoadRequiresBackendsInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when DATABASE_URL unset in production")
	}
}

func TestLoadParsesDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("TOKEN_TTL", "10h")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TokenTTL != 10*time.Hour {
		t.Fatalf("expected 10h ttl, got %v", cfg.TokenTTL)
	}
	if cfg.ShutdownPeriod != 3*time.Second {
		t.Fatalf("expected 3s shutdown, got %v", cfg.ShutdownPeriod)
	}

	t.Setenv("TOKEN_TTL", "banana")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid TOKEN_TTL")
	}
}

func TestAddress(t *testing.T) {
	if got := (Config{Port: "9090"}).Address(); got != ":9090" {
		t.Fatalf("expected :9090, got %s", got)
	}
	if got := (Config{Port: ":9090"}).Address(); got != ":9090" {
		t.Fatalf("expected :9090, got %s", got)
	}
}
