package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxConns = 10
	defaultMinConns = 2
	pingTimeout     = 3 * time.Second
)

type Config struct {
	Url             string        `mapstructure:"url"`
	Schema          string        `mapstructure:"schema"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// InitDB opens a pool and pings it once.
func InitDB(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := poolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	slog.Info("Connected to PostgreSQL",
		"host", pc.ConnConfig.Host,
		"database", pc.ConnConfig.Database,
		"schema", cfg.Schema,
		"max_conns", pc.MaxConns,
		"min_conns", pc.MinConns)
	return pool, nil
}

func poolConfig(cfg Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.Url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pc.MaxConns = defaultMaxConns
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pc.MinConns = min(defaultMinConns, pc.MaxConns)
	if cfg.MinConns > 0 && cfg.MinConns <= pc.MaxConns {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}

	if cfg.Schema != "" {
		setPath := "SET search_path TO " + pgx.Identifier{cfg.Schema}.Sanitize()
		pc.ConnConfig.RuntimeParams["search_path"] = cfg.Schema
		// Re-applied per connection: PgBouncer in transaction mode drops
		// startup parameters.
		pc.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if _, err := conn.Exec(ctx, setPath); err != nil {
				return fmt.Errorf("set search_path: %w", err)
			}
			return nil
		}
	}
	return pc, nil
}

// Pinger reports database reachability. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Healthy pings with a short timeout and never blocks longer than that.
func Healthy(ctx context.Context, p Pinger) bool {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		slog.Debug("Database ping failed", "error", err)
		return false
	}
	return true
}
