package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/propertyconnect/engine/pkg/config"
)

// Pool sizing defaults, applied when the config leaves them unset.
const (
	defaultMaxConns        = 25
	defaultConnLifetime    = time.Hour
	defaultConnIdleTimeout = 30 * time.Minute
)

// DB wraps the pgx connection pool serving all repositories.
type DB struct {
	*pgxpool.Pool
}

// Connect builds the pool from the marketplace database settings and
// verifies it with a ping before handing it out.
func Connect(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConnections
	if poolConfig.MaxConns <= 0 {
		poolConfig.MaxConns = defaultMaxConns
	}
	poolConfig.MaxConnLifetime = defaultConnLifetime
	poolConfig.MaxConnIdleTime = defaultConnIdleTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database pool established",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database),
		zap.Int32("max_conns", poolConfig.MaxConns))
	return &DB{Pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.Pool.Close()
}
