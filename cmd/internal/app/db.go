package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultDBPingTimeout = 3 * time.Second

// openProfilePool connects the pool backing the postgres profile store. The app owns the pool.
func openProfilePool(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("profile store: parse database url: %w", err)
	}
	if cfg.DBMaxConns > 0 {
		pcfg.MaxConns = cfg.DBMaxConns
	}
	pcfg.MinConns = min(max(cfg.DBMinConns, 0), pcfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("profile store: open pool: %w", err)
	}
	if err := pingPool(ctx, pool, cfg.DBPingTimeout); err != nil {
		pool.Close()
		return nil, fmt.Errorf("profile store: %w", err)
	}
	return pool, nil
}

// pingPool acquires and releases one connection within timeout.
func pingPool(parent context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(parent, nonZeroDuration(timeout, defaultDBPingTimeout))
	defer cancel()

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	conn.Release()
	return nil
}
