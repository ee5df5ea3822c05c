package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bentswoodworking/bents-api/internal/utils"
)

var ErrNotFound = errors.New("db: record not found")

type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, cfg utils.PostgresConfig) (*Postgres, error) {
	dsn := cfg.BuildDSN()
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns >= 0 {
		poolConfig.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}

	ctx, cancel := context.WithTimeout(ctx, timeoutOrDefault(cfg.ConnectTimeout))
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}

	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Close() {
	if p == nil || p.Pool == nil {
		return
	}
	p.Pool.Close()
}

func (p *Postgres) Ping(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return fmt.Errorf("postgres: pool not initialised")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return p.Pool.Ping(ctx)
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if p == nil || p.Pool == nil {
		return fmt.Errorf("postgres: pool not initialised")
	}

	statements := []string{
		strings.Join([]string{
			"CREATE TABLE IF NOT EXISTS products (",
			"    id UUID PRIMARY KEY,",
			"    title TEXT NOT NULL,",
			"    tags TEXT NOT NULL DEFAULT '',",
			"    link TEXT NOT NULL DEFAULT '',",
			"    image_url TEXT,",
			"    image_data BYTEA,",
			"    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
			")",
		}, "\n"),
		strings.Join([]string{
			"CREATE TABLE IF NOT EXISTS users (",
			"    id TEXT PRIMARY KEY,",
			"    username TEXT NOT NULL,",
			"    email TEXT NOT NULL DEFAULT '',",
			"    password_hash TEXT NOT NULL,",
			"    profile JSONB NOT NULL DEFAULT '{}'::jsonb,",
			"    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),",
			"    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
			")",
		}, "\n"),
		"CREATE UNIQUE INDEX IF NOT EXISTS " + usernameIndex + " ON users (LOWER(username))",
		"CREATE UNIQUE INDEX IF NOT EXISTS " + emailIndex + " ON users (LOWER(email)) WHERE email <> ''",
		strings.Join([]string{
			"CREATE TABLE IF NOT EXISTS contacts (",
			"    id BIGSERIAL PRIMARY KEY,",
			"    name TEXT NOT NULL DEFAULT '',",
			"    email TEXT NOT NULL,",
			"    subject TEXT NOT NULL DEFAULT '',",
			"    message TEXT NOT NULL,",
			"    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
			")",
		}, "\n"),
		strings.Join([]string{
			"CREATE TABLE IF NOT EXISTS questions (",
			"    id BIGSERIAL PRIMARY KEY,",
			"    question_text TEXT NOT NULL UNIQUE",
			")",
		}, "\n"),
		strings.Join([]string{
			"CREATE TABLE IF NOT EXISTS session_hist (",
			"    user_id TEXT PRIMARY KEY,",
			"    session_data JSONB NOT NULL DEFAULT '[]'::jsonb,",
			"    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),",
			"    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()",
			")",
		}, "\n"),
	}

	for _, stmt := range statements {
		if _, err := p.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("postgres: ensure schema: %w", err)
		}
	}

	return nil
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value > 0 {
		return value
	}
	return 10 * time.Second
}
