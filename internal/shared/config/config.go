package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseURL string
	SQLitePath  string
	AutoMigrate bool

	// WebhookPort may be a bare port, host:port or a full URL
	WebhookPort        string
	CoordinatorURL     string
	StatusPollInterval time.Duration

	NATSURL           string
	NATSSubjectPrefix string

	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// NotesBackend selects the note store: database, memory or unimplemented
	NotesBackend string

	// AuditRetentionDays prunes activity logs daily; 0 keeps them forever
	AuditRetentionDays int
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using system environment variables")
	}

	cfg := &Config{
		Port:     os.Getenv("PORT"),
		Env:      os.Getenv("ENV"),
		LogLevel: os.Getenv("LOG_LEVEL"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  os.Getenv("SQLITE_PATH"),
		AutoMigrate: getBoolEnv("AUTO_MIGRATE", false),

		WebhookPort:        os.Getenv("WEBHOOK_PORT"),
		CoordinatorURL:     os.Getenv("COORDINATOR_URL"),
		StatusPollInterval: getDurationEnv("STATUS_POLL_INTERVAL", 30*time.Second),

		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: os.Getenv("NATS_SUBJECT_PREFIX"),

		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),

		NotesBackend: os.Getenv("NOTES_BACKEND"),

		AuditRetentionDays: getIntEnv("AUDIT_RETENTION_DAYS", 0),
	}

	// Default values
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "console.db"
	}
	if cfg.WebhookPort == "" {
		cfg.WebhookPort = "8081"
	}
	if cfg.NATSSubjectPrefix == "" {
		cfg.NATSSubjectPrefix = "console.webhook"
	}
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}
	if cfg.NotesBackend == "" {
		cfg.NotesBackend = "database"
	}
	if cfg.DatabaseURL == "" {
		// SQLite has no migration files, let GORM create the tables
		cfg.AutoMigrate = true
	}

	return cfg
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
