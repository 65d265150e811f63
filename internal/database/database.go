package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3" // Required by the library implementation.
)

type Database struct {
	db  *sql.DB
	log *slog.Logger
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

func New(ctx context.Context, dbPath string, log *slog.Logger) (*Database, error) {
	dbFile, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open DB file: %w", err)
	}

	if err = migrateUp(ctx, dbFile, dbPath, log); err != nil {
		if closeErr := dbFile.Close(); closeErr != nil {
			log.WarnContext(ctx, "Failed to close db after migration error",
				"error", closeErr,
				"dbPath", dbPath)
		}

		return nil, err
	}

	return &Database{db: dbFile, log: log}, nil
}

// migrateUp applies the embedded migrations to dbFile. It leaves dbFile open.
func migrateUp(ctx context.Context, dbFile *sql.DB, dbPath string, log *slog.Logger) error {
	driver, err := sqlite3.WithInstance(dbFile, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("create DB instance: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create source instance: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}

	attrs := []any{"dbPath", dbPath}

	version, dirty, err := m.Version()
	switch {
	case err == nil:
		attrs = append(attrs, "version", version, "dirty", dirty)
	case !errors.Is(err, migrate.ErrNilVersion):
		log.WarnContext(ctx, "Failed to fetch migration version",
			"error", err,
			"dbPath", dbPath)
	}

	if upErr != nil {
		log.InfoContext(ctx, "No migrations to apply", attrs...)
	} else {
		log.InfoContext(ctx, "DB is migrated", attrs...)
	}

	return nil
}

func (d *Database) Close() error {
	return d.db.Close()
}
