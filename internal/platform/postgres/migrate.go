package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsDir      = "migrations"
	migrationTableName = "schema_migrations"
)

// MigrationCommands lists the goose commands Migrate accepts.
var MigrationCommands = []string{"up", "up-by-one", "down", "redo", "reset", "status", "version"}

// slogGooseLogger routes goose output through slog. Fatalf logs instead of
// exiting so the caller decides how to fail.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Migrate runs a goose command against db using the embedded migrations.
func Migrate(ctx context.Context, db *sql.DB, command string, logger *slog.Logger, args ...string) error {
	if logger == nil {
		logger = slog.Default()
	}
	if !validMigrationCommand(command) {
		return fmt.Errorf("unknown migration command %q (want one of %s)", command, strings.Join(MigrationCommands, ", "))
	}

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName(migrationTableName)
	goose.SetLogger(&slogGooseLogger{logger: logger.With(slog.String("component", "migrations"))})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	logger.Info("running migrations", slog.String("command", command))
	if err := goose.RunContext(ctx, command, db, migrationsDir, args...); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}

func validMigrationCommand(command string) bool {
	for _, c := range MigrationCommands {
		if c == command {
			return true
		}
	}
	return false
}
