package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

const migrateTimeout = 2 * time.Minute

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migration is one embedded migration and whether it has been applied.
type Migration struct {
	Version   int64     `json:"version"`
	File      string    `json:"file"`
	Applied   bool      `json:"applied"`
	AppliedAt time.Time `json:"applied_at,omitzero"`
}

// RunMigrations applies every pending migration to schema, creating it first.
func RunMigrations(dbURL, schema string) error {
	return migrate(dbURL, schema, func(ctx context.Context, p *goose.Provider) error {
		results, err := p.Up(ctx)
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		for _, r := range results {
			slog.Info("Applied migration", "version", r.Source.Version, "duration", r.Duration)
		}
		slog.Info("Database schema is up to date", "schema", schemaOrPublic(schema), "applied", len(results))
		return nil
	})
}

// MigrationStatus lists embedded migrations in version order.
func MigrationStatus(dbURL, schema string) ([]Migration, error) {
	var out []Migration
	err := migrate(dbURL, schema, func(ctx context.Context, p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return fmt.Errorf("migration status: %w", err)
		}
		for _, s := range statuses {
			out = append(out, Migration{
				Version:   s.Source.Version,
				File:      s.Source.Path,
				Applied:   s.State == goose.StateApplied,
				AppliedAt: s.AppliedAt,
			})
		}
		return nil
	})
	return out, err
}

// RollbackMigration reverts the newest applied migration and returns its version.
func RollbackMigration(dbURL, schema string) (int64, error) {
	var version int64
	err := migrate(dbURL, schema, func(ctx context.Context, p *goose.Provider) error {
		r, err := p.Down(ctx)
		if err != nil {
			return fmt.Errorf("migrate down: %w", err)
		}
		version = r.Source.Version
		return nil
	})
	return version, err
}

func migrate(dbURL, schema string, fn func(ctx context.Context, p *goose.Provider) error) error {
	if dbURL == "" {
		return errors.New("database url is empty")
	}
	schema = schemaOrPublic(schema)

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()

	conn, err := sql.Open("pgx", dbURL)
	if err != nil {
		return err
	}
	defer conn.Close()
	// search_path is per connection.
	conn.SetMaxOpenConns(1)

	if err := prepareSchema(ctx, conn, schema); err != nil {
		return err
	}

	migrations, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, conn, migrations)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	return fn(ctx, provider)
}

func prepareSchema(ctx context.Context, conn *sql.DB, schema string) error {
	ident := pgx.Identifier{schema}.Sanitize()
	if _, err := conn.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+ident); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}
	if _, err := conn.ExecContext(ctx, "SET search_path TO "+ident); err != nil {
		return fmt.Errorf("set search_path %s: %w", schema, err)
	}
	return nil
}

func schemaOrPublic(schema string) string {
	if schema == "" {
		return "public"
	}
	return schema
}
