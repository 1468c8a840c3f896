package config

import (
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/jobreach?sslmode=disable")
	t.Setenv("MAIL_PROVIDER_URL", "https://mail.test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port = %d", cfg.Server.Port)
	}
	if cfg.Session.InactivityThreshold != 5*time.Minute {
		t.Errorf("default inactivity threshold = %v", cfg.Session.InactivityThreshold)
	}
	if cfg.DB.MigrationsDir != "migrations" {
		t.Errorf("default migrations dir = %q", cfg.DB.MigrationsDir)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_INACTIVITY_THRESHOLD", "10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Session.InactivityThreshold != 10*time.Minute {
		t.Errorf("inactivity threshold = %v", cfg.Session.InactivityThreshold)
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("MAIL_PROVIDER_URL", "https://mail.test")

	if _, err := Load(); err == nil {
		t.Error("expected error for missing DATABASE_URL")
	}
}

func TestLoadRejectsBadMailURL(t *testing.T) {
	setRequired(t)
	t.Setenv("MAIL_PROVIDER_URL", "mail.test")

	if _, err := Load(); err == nil {
		t.Error("expected error for schemeless MAIL_PROVIDER_URL")
	}
}

func TestMalformedEnvFallsBackToDefault(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "not-a-number")
	t.Setenv("MAIL_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want default", cfg.Server.Port)
	}
	if cfg.Mail.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want default", cfg.Mail.Timeout)
	}
}
