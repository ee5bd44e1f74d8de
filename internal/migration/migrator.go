// Package migration applies the versioned SQL schema with goose.
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed sql/*.sql
var migrations embed.FS

const migrationsDir = "sql"

type Migrator struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects with lib/pq; goose talks database/sql directly.
func Open(dsn string, logger *slog.Logger) (*Migrator, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	m, err := New(db, "postgres", logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func New(db *sql.DB, dialect string, logger *slog.Logger) (*Migrator, error) {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Migrator{db: db, logger: logger.With("component", "migration")}, nil
}

func (m *Migrator) Close() error { return m.db.Close() }

func (m *Migrator) Up(ctx context.Context) error {
	if err := goose.UpContext(ctx, m.db, migrationsDir); err != nil {
		if isNoMigrationErr(err) {
			m.logger.Info("no migrations to apply")
			return nil
		}
		return err
	}
	m.logger.Info("migrations applied")
	return nil
}

// Down rolls back steps migrations (at least one), or everything when all is set.
func (m *Migrator) Down(ctx context.Context, steps int, all bool) error {
	if all {
		if err := goose.DownToContext(ctx, m.db, migrationsDir, 0); err != nil && !isNoMigrationErr(err) {
			return err
		}
		m.logger.Info("migrations rolled back", "mode", "all")
		return nil
	}

	steps = max(steps, 1)
	for i := 0; i < steps; i++ {
		if err := goose.DownContext(ctx, m.db, migrationsDir); err != nil {
			if isNoMigrationErr(err) {
				m.logger.Info("no migrations to rollback")
				return nil
			}
			return err
		}
	}
	m.logger.Info("migrations rolled back", "steps", steps)
	return nil
}

// Status prints the applied state of every migration through goose's logger.
func (m *Migrator) Status(ctx context.Context) error {
	return goose.StatusContext(ctx, m.db, migrationsDir)
}

func isNoMigrationErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, goose.ErrNoNextVersion) || errors.Is(err, goose.ErrNoMigrationFiles) {
		return true
	}
	return strings.Contains(err.Error(), "no migrations")
}
