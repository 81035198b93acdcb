package config

import (
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Port)
	}
	if cfg.DBType != "sqlite" {
		t.Errorf("expected default db type sqlite, got %q", cfg.DBType)
	}
	if cfg.MailProvider != "log" {
		t.Errorf("expected default mail provider log, got %q", cfg.MailProvider)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("expected default bcrypt cost 12, got %d", cfg.BcryptCost)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("MAIL_PROVIDER", "sendgrid")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Port)
	}
	if cfg.DBType != "postgres" {
		t.Errorf("expected db type postgres, got %q", cfg.DBType)
	}
	if cfg.MailProvider != "sendgrid" {
		t.Errorf("expected mail provider sendgrid, got %q", cfg.MailProvider)
	}
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error when SECRET_KEY is unset")
	}
}
