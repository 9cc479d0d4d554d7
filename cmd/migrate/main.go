package main

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/config"
	"github.com/MuhamadAgungGumelar/support-console-be/internal/shared/utils"
)

const usage = "up, down, steps N, version, force V"

func main() {
	var (
		module string
		dir    string
		dbURL  string
	)
	flag.StringVar(&module, "module", "inbox", "Migration set under -dir")
	flag.StringVar(&dir, "dir", "migrations", "Root directory of the migration sets")
	flag.StringVar(&dbURL, "database", "", "Postgres URL, defaults to DATABASE_URL")
	flag.Parse()

	cfg := config.LoadConfig()
	utils.InitLogger(cfg.LogLevel)

	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if dbURL == "" {
		log.Fatal().Msg("❌ DATABASE_URL is required; the SQLite fallback is migrated on startup")
	}

	command := flag.Arg(0)
	if command == "" {
		command = "up"
	}

	source := fmt.Sprintf("file://%s/%s", dir, module)
	log.Info().Str("module", module).Str("source", source).Str("database", redactURL(dbURL)).Msg("🔄 Running migrations")

	m, err := migrate.New(source, dbURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to create migrate instance")
	}
	defer m.Close()

	if err := run(m, command, flag.Arg(1)); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("❌ Migration failed")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatal().Err(err).Msg("❌ Failed to read version")
	}
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("✅ Done")
}

func run(m *migrate.Migrate, command, arg string) error {
	switch command {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		n, err := strconv.Atoi(arg)
		if err != nil || n == 0 {
			return fmt.Errorf("steps needs a non-zero count, got %q", arg)
		}
		return ignoreNoChange(m.Steps(n))
	case "version":
		return nil
	case "force":
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("force needs a version, got %q", arg)
		}
		return m.Force(v)
	}
	return fmt.Errorf("unknown command %q (use: %s)", command, usage)
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("ℹ️ No change")
		return nil
	}
	return err
}

// redactURL hides the password of a database URL for logging
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return "***"
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
