package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "DATABASE_URL", "WEBHOOK_PORT", "STATUS_POLL_INTERVAL", "NOTES_BACKEND", "AUTO_MIGRATE"} {
		t.Setenv(key, "")
	}
	chdir(t, t.TempDir())

	cfg := LoadConfig()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.WebhookPort != "8081" {
		t.Errorf("WebhookPort = %q, want 8081", cfg.WebhookPort)
	}
	if cfg.StatusPollInterval != 30*time.Second {
		t.Errorf("StatusPollInterval = %v, want 30s", cfg.StatusPollInterval)
	}
	if cfg.NotesBackend != "database" {
		t.Errorf("NotesBackend = %q, want database", cfg.NotesBackend)
	}
	if !cfg.AutoMigrate {
		t.Errorf("AutoMigrate = false without DATABASE_URL")
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/console")
	t.Setenv("WEBHOOK_PORT", "http://localhost:9191")
	t.Setenv("STATUS_POLL_INTERVAL", "5s")
	t.Setenv("AUTO_MIGRATE", "")

	cfg := LoadConfig()

	if cfg.Port != "9000" || cfg.WebhookPort != "http://localhost:9191" {
		t.Errorf("got port %q webhook %q", cfg.Port, cfg.WebhookPort)
	}
	if cfg.StatusPollInterval != 5*time.Second {
		t.Errorf("StatusPollInterval = %v, want 5s", cfg.StatusPollInterval)
	}
	if cfg.AutoMigrate {
		t.Errorf("AutoMigrate = true with DATABASE_URL and no AUTO_MIGRATE")
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}
