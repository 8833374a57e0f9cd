package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HammerMeetNail/braincast/internal/config"
)

// PoolSettings bounds the pgx connection pool.
type PoolSettings struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

var DefaultPoolSettings = PoolSettings{
	MaxConns:          20,
	MinConns:          2,
	MaxConnLifetime:   time.Hour,
	MaxConnIdleTime:   15 * time.Minute,
	HealthCheckPeriod: time.Minute,
}

type Postgres struct {
	Pool *pgxpool.Pool
}

// Seams for tests that exercise connection setup without a server.
var (
	parsePoolConfig = pgxpool.ParseConfig
	openPool        = pgxpool.NewWithConfig
	pingPool        = func(ctx context.Context, pool *pgxpool.Pool) error { return pool.Ping(ctx) }
	closePool       = func(pool *pgxpool.Pool) { pool.Close() }
)

// ConnectPostgres opens a pool for cfg and verifies it with a ping.
func ConnectPostgres(ctx context.Context, cfg config.DatabaseConfig, settings PoolSettings) (*Postgres, error) {
	poolConfig, err := parsePoolConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolConfig.MaxConns = settings.MaxConns
	poolConfig.MinConns = settings.MinConns
	poolConfig.MaxConnLifetime = settings.MaxConnLifetime
	poolConfig.MaxConnIdleTime = settings.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = settings.HealthCheckPeriod

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := openPool(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pingPool(ctx, pool); err != nil {
		closePool(pool)
		return nil, fmt.Errorf("pinging database %s: %w", cfg.DBName, err)
	}
	return &Postgres{Pool: pool}, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		closePool(p.Pool)
	}
}

func (p *Postgres) Ping(ctx context.Context) error {
	return pingPool(ctx, p.Pool)
}
