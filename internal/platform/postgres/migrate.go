package postgres

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
)

// ApplyMigrations brings the schema up to date using the goose
// migrations in migrationsDir.
func ApplyMigrations(db *sql.DB, migrationsDir string) error {
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	goose.SetTableName("schema_migrations")
	goose.SetBaseFS(os.DirFS(migrationsDir))
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
