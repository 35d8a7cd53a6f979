package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/annedfinds/storefront-notify/internal/metrics"
)

// DB wraps a pgxpool.Pool for the delivery log store.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB opens the connection pool and verifies the database is reachable
// within connectTimeout.
func NewDB(ctx context.Context, databaseURL string, minConns, maxConns int32, connectTimeout time.Duration) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	cfg.MinConns = minConns
	cfg.MaxConns = maxConns
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close releases every pooled connection.
func (db *DB) Close() {
	db.Pool.Close()
}

// Ping checks connectivity; used by the readiness probe.
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// RecordStats publishes pool connection counts to the db_connections gauges.
func (db *DB) RecordStats() {
	stat := db.Pool.Stat()
	metrics.DBConnectionsActive.Set(float64(stat.AcquiredConns()))
	metrics.DBConnectionsIdle.Set(float64(stat.IdleConns()))
}
