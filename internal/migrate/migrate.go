// Package migrate applies the embedded SQL migrations.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"filmtrack/migrations"
)

func setup(dbType string) error {
	if dbType != "postgres" {
		return fmt.Errorf("sql migrations are only provided for postgres, got %q (use DATABASE.AUTO_MIGRATE)", dbType)
	}
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("postgres")
}

// Up runs all pending migrations from the embedded filesystem.
func Up(ctx context.Context, db *sql.DB, dbType string) error {
	if err := setup(dbType); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Down rolls back the most recent migration.
func Down(ctx context.Context, db *sql.DB, dbType string) error {
	if err := setup(dbType); err != nil {
		return err
	}
	return goose.DownContext(ctx, db, ".")
}

// Status prints the applied state of every migration.
func Status(ctx context.Context, db *sql.DB, dbType string) error {
	if err := setup(dbType); err != nil {
		return err
	}
	return goose.StatusContext(ctx, db, ".")
}
